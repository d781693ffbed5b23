package emit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/refinery/internal/workflow"
)

const (
	daxNamespace = "http://pegasus.isi.edu/schema/DAX"
	daxSchema    = "http://pegasus.isi.edu/schema/dax-3.4.xsd"
	daxVersion   = "3.4"
)

// DAX writes the Pegasus DAX 3.4 XML representation.
type DAX struct{}

// FileName implements workflow.Encoder.
func (DAX) FileName() string { return "dax.xml" }

type daxDocument struct {
	XMLName        xml.Name   `xml:"adag"`
	Xmlns          string     `xml:"xmlns,attr"`
	XmlnsXSI       string     `xml:"xmlns:xsi,attr"`
	SchemaLocation string     `xml:"xsi:schemaLocation,attr"`
	Version        string     `xml:"version,attr"`
	Name           string     `xml:"name,attr"`
	JobCount       int        `xml:"jobCount,attr"`
	ChildCount     int        `xml:"childCount,attr"`
	Jobs           []daxJob   `xml:"job"`
	Children       []daxChild `xml:"child"`
}

type daxJob struct {
	ID        string       `xml:"id,attr"`
	Namespace string       `xml:"namespace,attr,omitempty"`
	Name      string       `xml:"name,attr"`
	NodeLabel string       `xml:"node-label,attr"`
	Argument  *daxArgument `xml:"argument"`
	Profiles  []daxProfile `xml:"profile"`
	Stdin     *daxFileRef  `xml:"stdin"`
	Uses      []daxUses    `xml:"uses"`
}

type daxProfile struct {
	Namespace string `xml:"namespace,attr"`
	Key       string `xml:"key,attr"`
	Value     string `xml:",chardata"`
}

type daxFileRef struct {
	Name string `xml:"name,attr"`
}

type daxUses struct {
	Name     string `xml:"name,attr"`
	Link     string `xml:"link,attr"`
	Transfer string `xml:"transfer,attr,omitempty"`
}

type daxRef struct {
	Ref string `xml:"ref,attr"`
}

type daxChild struct {
	Ref     string   `xml:"ref,attr"`
	Parents []daxRef `xml:"parent"`
}

// daxArgument is mixed content: literal text interleaved with <file/>
// references. It is pre-rendered so the encoder's indentation never lands
// inside the command line.
type daxArgument struct {
	Inner string `xml:",innerxml"`
}

func newArgument(args []workflow.Arg) *daxArgument {
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		if !arg.IsFile() {
			xml.EscapeText(&b, []byte(arg.Literal))
			continue
		}
		b.WriteString(`<file name="`)
		xml.EscapeText(&b, []byte(arg.File))
		b.WriteString(`"/>`)
	}
	return &daxArgument{Inner: b.String()}
}

// Encode implements workflow.Encoder.
func (DAX) Encode(w io.Writer, wf *workflow.Workflow) error {
	doc := daxDocument{
		Xmlns:          daxNamespace,
		XmlnsXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: daxNamespace + " " + daxSchema,
		Version:        daxVersion,
		Name:           wf.Name(),
	}

	// Jobs are listed parents first so a reader can follow the file top down.
	for _, id := range wf.TopologicalOrder() {
		n, _ := wf.Node(id)
		job := daxJob{
			ID:        n.ID,
			Namespace: n.Namespace,
			Name:      n.Executable,
			NodeLabel: n.Label,
			Profiles:  globusProfiles(n),
		}
		if len(n.Args) > 0 {
			job.Argument = newArgument(n.Args)
		}
		if n.Stdin != "" {
			job.Stdin = &daxFileRef{Name: n.Stdin}
		}
		for _, u := range n.Uses {
			du := daxUses{Name: u.Name, Link: string(u.Link)}
			if u.Link == workflow.LinkOutput {
				du.Transfer = strconv.FormatBool(u.Transfer)
			}
			job.Uses = append(job.Uses, du)
		}
		doc.Jobs = append(doc.Jobs, job)

		if parents := wf.Parents(n.ID); len(parents) > 0 {
			child := daxChild{Ref: n.ID}
			for _, p := range parents {
				child.Parents = append(child.Parents, daxRef{Ref: p})
			}
			doc.Children = append(doc.Children, child)
		}
	}
	doc.JobCount = len(doc.Jobs)
	doc.ChildCount = len(doc.Children)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<!-- generated by refinery -->\n"); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding dax: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// globusProfiles renders a task's resource profile in the globus namespace.
func globusProfiles(n workflow.TaskNode) []daxProfile {
	return []daxProfile{
		{Namespace: "globus", Key: "jobtype", Value: string(n.Profile.Mode)},
		{Namespace: "globus", Key: "maxwalltime", Value: strconv.Itoa(n.Profile.MaxWallMinutes)},
		{Namespace: "globus", Key: "count", Value: strconv.Itoa(n.Profile.Count)},
	}
}
