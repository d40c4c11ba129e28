package fsworkspace

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/aalvaropc/dfkit/internal/domain"
)

//go:embed templates/dfkit.yaml.tmpl
var templatesFS embed.FS

var configTemplate = template.Must(template.ParseFS(templatesFS, "templates/dfkit.yaml.tmpl"))

type configValues struct {
	Hostname      string
	CADESEndpoint string
}

// renderConfig fills the dfkit.yaml template for the given machine.
func renderConfig(hostname string) ([]byte, error) {
	host := strings.Join(strings.Fields(hostname), "")
	if host == "" {
		host = "my-laptop"
	}

	var buf bytes.Buffer
	err := configTemplate.Execute(&buf, configValues{
		Hostname:      host,
		CADESEndpoint: domain.CADESEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
