package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fivetwenty-io/usergrid-client/internal/constants"
	"github.com/fivetwenty-io/usergrid-client/pkg/usergrid"
	"gopkg.in/yaml.v3"
)

// Format is a credentials file encoding.
type Format string

// File formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath infers a format from the file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

type fileDocument struct {
	Version     int                                   `json:"version"     yaml:"version"     toml:"version"`
	Credentials map[string]*usergrid.StoredCredential `json:"credentials" yaml:"credentials" toml:"credentials"`
}

// FileStore keeps all credentials in one file, rewritten on every change.
type FileStore struct {
	mu     sync.Mutex
	path   string
	format Format
}

// NewFileStore creates a store at path. An empty format is inferred from
// the extension.
func NewFileStore(path string, format Format) (*FileStore, error) {
	if format == "" {
		format = FormatFromPath(path)
	}

	switch format {
	case FormatYAML, FormatTOML, FormatJSON:
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedFormat, format)
	}

	return &FileStore{path: filepath.Clean(path), format: format}, nil
}

// Path returns the file path.
func (s *FileStore) Path() string {
	return s.path
}

// Save stores a credential.
func (s *FileStore) Save(ctx context.Context, key string, cred *usergrid.StoredCredential) error {
	if cred == nil {
		return usergrid.ErrNilCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	stored := *cred
	if stored.Version == 0 {
		stored.Version = usergrid.CredentialVersion
	}

	doc.Credentials[key] = &stored

	return s.write(doc)
}

// Load reads a credential.
func (s *FileStore) Load(ctx context.Context, key string) (*usergrid.StoredCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	cred, ok := doc.Credentials[key]
	if !ok || cred == nil {
		return nil, usergrid.ErrCredentialNotFound
	}

	err = cred.Validate()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return cred, nil
}

// Delete removes a credential.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := doc.Credentials[key]; !ok {
		return nil
	}

	delete(doc.Credentials, key)

	return s.write(doc)
}

// read returns an empty document if the file does not exist.
func (s *FileStore) read() (*fileDocument, error) {
	doc := &fileDocument{Version: usergrid.CredentialVersion}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc.Credentials = make(map[string]*usergrid.StoredCredential)

			return doc, nil
		}

		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	switch s.format {
	case FormatTOML:
		err = toml.Unmarshal(data, doc)
	case FormatJSON:
		err = json.Unmarshal(data, doc)
	default:
		err = yaml.Unmarshal(data, doc)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}

	if doc.Credentials == nil {
		doc.Credentials = make(map[string]*usergrid.StoredCredential)
	}

	return doc, nil
}

func (s *FileStore) write(doc *fileDocument) error {
	var (
		buf bytes.Buffer
		err error
	)

	switch s.format {
	case FormatTOML:
		err = toml.NewEncoder(&buf).Encode(doc)
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))
		err = encoder.Encode(doc)
	default:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(constants.JSONIndentSize)
		err = encoder.Encode(doc)
	}

	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	err = os.WriteFile(s.path, buf.Bytes(), constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}
