package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/spamguard/internal/core"
	"gopkg.in/yaml.v3"
)

const (
	formatName    = "spamguard-artifact"
	formatVersion = 1
)

// Artifact kinds as written in YAML documents
const (
	KindCountVectorizer = "count_vectorizer"
	KindMultinomialNB   = "multinomial_nb"
	KindLinear          = "linear"
)

func init() {
	gob.RegisterName("spamguard.CountVectorizer", &CountVectorizer{})
	gob.RegisterName("spamguard.MultinomialNB", &MultinomialNB{})
	gob.RegisterName("spamguard.LinearModel", &LinearModel{})
}

// envelope is the gob on-disk wrapper around one artifact
type envelope struct {
	Format   string
	Version  int
	Artifact any
}

// document is the YAML on-disk form of one artifact
type document struct {
	Kind            string           `yaml:"kind"`
	Version         int              `yaml:"version"`
	CountVectorizer *CountVectorizer `yaml:"count_vectorizer,omitempty"`
	MultinomialNB   *MultinomialNB   `yaml:"multinomial_nb,omitempty"`
	Linear          *LinearModel     `yaml:"linear,omitempty"`
}

type validator interface {
	Validate() error
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// ReadFile decodes and validates the artifact stored at path.
// YAML is used for .yaml/.yml files and gob for everything else.
func ReadFile(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var artifact any
	if isYAML(path) {
		artifact, err = decodeYAML(f)
	} else {
		artifact, err = decodeGob(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if v, ok := artifact.(validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
		}
	}

	return artifact, nil
}

func decodeGob(r io.Reader) (any, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}
	if env.Format != formatName {
		return nil, fmt.Errorf("unrecognized format %q", env.Format)
	}
	if env.Version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", env.Version)
	}
	if env.Artifact == nil {
		return nil, fmt.Errorf("empty artifact")
	}
	return env.Artifact, nil
}

func decodeYAML(r io.Reader) (any, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Version != 0 && doc.Version != formatVersion {
		return nil, fmt.Errorf("unsupported format version %d", doc.Version)
	}

	switch doc.Kind {
	case KindCountVectorizer:
		if doc.CountVectorizer != nil {
			return doc.CountVectorizer, nil
		}
	case KindMultinomialNB:
		if doc.MultinomialNB != nil {
			return doc.MultinomialNB, nil
		}
	case KindLinear:
		if doc.Linear != nil {
			return doc.Linear, nil
		}
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", doc.Kind)
	}
	return nil, fmt.Errorf("artifact kind %q has no %s section", doc.Kind, doc.Kind)
}

// WriteFile encodes artifact to path in the format implied by the extension
func WriteFile(path string, artifact any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if isYAML(path) {
		err = encodeYAML(f, artifact)
	} else {
		err = gob.NewEncoder(f).Encode(&envelope{
			Format:   formatName,
			Version:  formatVersion,
			Artifact: artifact,
		})
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func encodeYAML(w io.Writer, artifact any) error {
	doc := document{Version: formatVersion}
	switch a := artifact.(type) {
	case *CountVectorizer:
		doc.Kind, doc.CountVectorizer = KindCountVectorizer, a
	case *MultinomialNB:
		doc.Kind, doc.MultinomialNB = KindMultinomialNB, a
	case *LinearModel:
		doc.Kind, doc.Linear = KindLinear, a
	default:
		return fmt.Errorf("unsupported artifact type %T", artifact)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&doc)
}

// LoadClassifier reads a classifier artifact
func LoadClassifier(path string) (core.Classifier, error) {
	artifact, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	clf, ok := artifact.(core.Classifier)
	if !ok {
		return nil, fmt.Errorf("%s holds a %T, not a classifier", path, artifact)
	}
	return clf, nil
}

// LoadVectorizer reads a vectorizer artifact
func LoadVectorizer(path string) (core.Vectorizer, error) {
	artifact, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	vec, ok := artifact.(core.Vectorizer)
	if !ok {
		return nil, fmt.Errorf("%s holds a %T, not a vectorizer", path, artifact)
	}
	return vec, nil
}
