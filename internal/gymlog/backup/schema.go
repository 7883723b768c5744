package backup

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2beens/gymlog/internal/gymlog/repo"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed snapshot.schema.json
	snapshotSchemaJSON string
	//go:embed webhook.schema.json
	webhookSchemaJSON string

	snapshotSchema = gojsonschema.NewStringLoader(snapshotSchemaJSON)
	webhookSchema  = gojsonschema.NewStringLoader(webhookSchemaJSON)
)

func validate(schema gojsonschema.JSONLoader, data []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(msgs, "; "))
	}
	return nil
}

// ParseSnapshot validates data against the export schema and decodes it.
func ParseSnapshot(data []byte) (repo.Snapshot, error) {
	if err := validate(snapshotSchema, data); err != nil {
		return repo.Snapshot{}, err
	}

	var snapshot repo.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return repo.Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, err)
	}
	if snapshot.Version != repo.SnapshotVersion {
		return repo.Snapshot{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, snapshot.Version)
	}
	return snapshot, nil
}
