package emit

import (
	"fmt"
	"io"

	"github.com/vk/refinery/internal/workflow"
	"gopkg.in/yaml.v3"
)

// YAML writes the Pegasus 5 YAML workflow layout.
type YAML struct{}

// FileName implements workflow.Encoder.
func (YAML) FileName() string { return "workflow.yml" }

type yamlDocument struct {
	Pegasus         string           `yaml:"pegasus"`
	Name            string           `yaml:"name"`
	Jobs            []yamlJob        `yaml:"jobs"`
	JobDependencies []yamlDependency `yaml:"jobDependencies,omitempty"`
}

type yamlJob struct {
	Type      string       `yaml:"type"`
	Namespace string       `yaml:"namespace,omitempty"`
	Name      string       `yaml:"name"`
	ID        string       `yaml:"id"`
	NodeLabel string       `yaml:"nodeLabel"`
	Arguments []string     `yaml:"arguments,flow"`
	Stdin     string       `yaml:"stdin,omitempty"`
	Uses      []yamlUse    `yaml:"uses"`
	Profiles  yamlProfiles `yaml:"profiles"`
}

type yamlUse struct {
	LFN      string `yaml:"lfn"`
	Type     string `yaml:"type"`
	StageOut *bool  `yaml:"stageOut,omitempty"`
}

type yamlProfiles struct {
	Globus yamlGlobus `yaml:"globus"`
}

type yamlGlobus struct {
	JobType     string `yaml:"jobtype"`
	MaxWallTime int    `yaml:"maxwalltime"`
	Count       int    `yaml:"count"`
}

type yamlDependency struct {
	ID       string   `yaml:"id"`
	Children []string `yaml:"children,flow"`
}

// Encode implements workflow.Encoder.
func (YAML) Encode(w io.Writer, wf *workflow.Workflow) error {
	doc := yamlDocument{Pegasus: "5.0", Name: wf.Name()}

	for _, id := range wf.TopologicalOrder() {
		n, _ := wf.Node(id)
		job := yamlJob{
			Type:      "job",
			Namespace: n.Namespace,
			Name:      n.Executable,
			ID:        n.ID,
			NodeLabel: n.Label,
			Arguments: make([]string, 0, len(n.Args)),
			Stdin:     n.Stdin,
			Profiles: yamlProfiles{Globus: yamlGlobus{
				JobType:     string(n.Profile.Mode),
				MaxWallTime: n.Profile.MaxWallMinutes,
				Count:       n.Profile.Count,
			}},
		}
		for _, a := range n.Args {
			job.Arguments = append(job.Arguments, a.String())
		}
		for _, u := range n.Uses {
			use := yamlUse{LFN: u.Name, Type: string(u.Link)}
			if u.Link == workflow.LinkOutput {
				stageOut := u.Transfer
				use.StageOut = &stageOut
			}
			job.Uses = append(job.Uses, use)
		}
		doc.Jobs = append(doc.Jobs, job)

		if children := wf.Children(n.ID); len(children) > 0 {
			doc.JobDependencies = append(doc.JobDependencies, yamlDependency{ID: n.ID, Children: children})
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding yaml workflow: %w", err)
	}
	return enc.Close()
}
