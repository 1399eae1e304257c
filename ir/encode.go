package ir

import (
	"bytes"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Artifact is the serializable view of a compiled schema: the tree plus a
// description of the reference store it points into.
type Artifact struct {
	Root *RootNode `json:"root" yaml:"root"`
	Refs []RefInfo `json:"refs" yaml:"refs"`
}

// NewArtifact pairs root with the entries of refs.
func NewArtifact(root *RootNode, refs *RefsStore) Artifact {
	a := Artifact{Root: root, Refs: []RefInfo{}}
	if refs != nil {
		a.Refs = refs.Entries()
	}
	return a
}

// JSON renders the artifact as indented JSON.
func (a Artifact) JSON() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// YAML renders the artifact as YAML with two-space indentation.
func (a Artifact) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
