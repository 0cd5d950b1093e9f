package ssp

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jkCXf9X4/ssp-airplane/internal/archive"
	"github.com/jkCXf9X4/ssp-airplane/internal/ctxlog"
	"github.com/jkCXf9X4/ssp-airplane/internal/fsutil"
)

// Read-side mirrors of the SSD document types. Unmarshaling matches element
// local names regardless of the ssd/ssc prefixes in the file, so the prefixed
// marshal tags on Document cannot be reused directly.
type ssdFileConnector struct {
	Name string      `xml:"name,attr"`
	Kind string      `xml:"kind,attr"`
	Type TypeElement `xml:",any"`
}

type ssdFileComponent struct {
	Name       string             `xml:"name,attr"`
	Type       string             `xml:"type,attr"`
	Source     string             `xml:"source,attr"`
	Connectors []ssdFileConnector `xml:"Connectors>Connector"`
}

type ssdFileSystem struct {
	Name              string             `xml:"name,attr"`
	Components        []ssdFileComponent `xml:"Elements>Component"`
	Connections       []Connection       `xml:"Connections>Connection"`
	ParameterBindings []ParameterBinding `xml:"ParameterBindings>ParameterBinding"`
}

type ssdFileDoc struct {
	XMLName           xml.Name          `xml:"SystemStructureDescription"`
	Name              string            `xml:"name,attr"`
	Version           string            `xml:"version,attr"`
	System            ssdFileSystem     `xml:"System"`
	DefaultExperiment DefaultExperiment `xml:"DefaultExperiment"`
}

// ParseDocument reads an SSD file back into the writable document model.
func ParseDocument(data []byte) (*Document, error) {
	var file ssdFileDoc
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing SSD: %w", err)
	}

	doc := &Document{
		XMLNSSSD: NamespaceSSD,
		XMLNSSSC: NamespaceSSC,
		Name:     file.Name,
		Version:  file.Version,
		System: System{
			Name:              file.System.Name,
			Connections:       file.System.Connections,
			ParameterBindings: file.System.ParameterBindings,
		},
		DefaultExperiment: file.DefaultExperiment,
	}
	for _, comp := range file.System.Components {
		component := Component{Name: comp.Name, Type: comp.Type, Source: comp.Source}
		for _, conn := range comp.Connectors {
			component.Connectors = append(component.Connectors, Connector{
				Name: conn.Name,
				Kind: conn.Kind,
				Type: TypeElement{
					XMLName: xml.Name{Local: "ssc:" + conn.Type.XMLName.Local},
					Value:   conn.Type.Value,
				},
			})
		}
		doc.System.Components = append(doc.System.Components, component)
	}
	return doc, nil
}

// AddParameterBinding points the system at a parameter resource, replacing
// any existing binding for the same source.
func (d *Document) AddParameterBinding(source string) {
	kept := d.System.ParameterBindings[:0]
	for _, binding := range d.System.ParameterBindings {
		if binding.Source != source {
			kept = append(kept, binding)
		}
	}
	d.System.ParameterBindings = append(kept, ParameterBinding{Source: source})
}

// PrepareWithParameters produces a per-scenario SSP: the base archive is
// unpacked into <resultsDir>/<stem>_run/unpacked, the parameter set lands in
// resources/, the SSD gains a ParameterBindings entry for it, and the tree is
// repacked as <stem>.ssp.
func PrepareWithParameters(ctx context.Context, sspPath, parameterSetPath, stem, resultsDir string) (string, error) {
	logger := ctxlog.FromContext(ctx)

	runDir := filepath.Join(resultsDir, stem+"_run")
	unpackDir := filepath.Join(runDir, "unpacked")
	if err := os.RemoveAll(unpackDir); err != nil {
		return "", err
	}
	if _, err := fsutil.EnsureDir(unpackDir); err != nil {
		return "", err
	}
	if err := archive.Unzip(sspPath, unpackDir); err != nil {
		return "", err
	}

	resourcesDir, err := fsutil.EnsureDir(filepath.Join(unpackDir, "resources"))
	if err != nil {
		return "", err
	}
	ssvName := filepath.Base(parameterSetPath)
	ssvData, err := os.ReadFile(parameterSetPath)
	if err != nil {
		return "", fmt.Errorf("reading parameter set %s: %w", parameterSetPath, err)
	}
	if err := os.WriteFile(filepath.Join(resourcesDir, ssvName), ssvData, 0o644); err != nil {
		return "", err
	}

	ssdPath := filepath.Join(unpackDir, "SystemStructure.ssd")
	ssdData, err := os.ReadFile(ssdPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", ssdPath, err)
	}
	doc, err := ParseDocument(ssdData)
	if err != nil {
		return "", err
	}
	doc.AddParameterBinding("resources/" + ssvName)
	updated, err := MarshalDocument(doc)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(ssdPath, updated, 0o644); err != nil {
		return "", err
	}

	prepared := filepath.Join(runDir, stem+".ssp")
	if err := os.RemoveAll(prepared); err != nil {
		return "", err
	}
	if err := archive.ZipDir(prepared, unpackDir); err != nil {
		return "", err
	}
	logger.Info("prepared scenario SSP", "path", prepared, "parameters", ssvName)
	return prepared, nil
}
