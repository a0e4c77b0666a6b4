package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// classDoc renders a minimal extractor document for a class with private String fields
func classDoc(name string, fields ...string) map[string]interface{} {
	fieldDocs := map[string]interface{}{}
	for i, f := range fields {
		fieldDocs[f] = map[string]interface{}{
			"name":      f,
			"type":      "String",
			"modifiers": []string{"private"},
			"position":  map[string]int{"startLine": i + 2, "startColumn": 5, "endLine": i + 2, "endColumn": 20},
		}
	}
	return map[string]interface{}{
		"key":       "src/" + name + ".java/class/" + name,
		"name":      name,
		"type":      "class",
		"file_path": "src/" + name + ".java",
		"fields":    fieldDocs,
		"methods":   map[string]interface{}{},
	}
}

// writeAST writes one JSON file per class into a new directory below root
func writeAST(t *testing.T, root string, docs ...map[string]interface{}) string {
	t.Helper()
	dir := filepath.Join(root, "ast")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, doc := range docs {
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, doc["name"].(string)+".json"), data, 0o644))
	}
	return dir
}

// clinicAST holds two classes sharing three fields
func clinicAST(t *testing.T) string {
	t.Helper()
	return writeAST(t, t.TempDir(),
		classDoc("Person", "address", "contactInfo", "insurance", "name"),
		classDoc("Doctor", "address", "contactInfo", "insurance", "license"),
		classDoc("Car", "wheels"),
	)
}
