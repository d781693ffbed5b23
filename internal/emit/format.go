package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/refinery/internal/workflow"
)

// Format names accepted by ForFormat.
const (
	FormatDAX  = "dax"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by ForFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatDAX, FormatYAML}
}

// ForFormat returns the encoder for a format name.
func ForFormat(name string) (workflow.Encoder, error) {
	switch name {
	case FormatDAX:
		return DAX{}, nil
	case FormatYAML:
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
	}
}
