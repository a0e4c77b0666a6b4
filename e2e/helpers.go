package e2e

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// buildClumpscnBinary builds the CLI into a temporary directory
func buildClumpscnBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "clumpscn")

	// Build from the project root (one level up from the e2e directory)
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/clumpscn")
	projectRoot, err := filepath.Abs("..")
	if err != nil {
		t.Fatalf("Failed to get project root: %v", err)
	}
	cmd.Dir = projectRoot

	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build clumpscn binary: %v\n%s", err, out)
	}
	return binaryPath
}

// method describes a method by name and parameter names; all types are String
type method struct {
	name   string
	params []string
}

// createClassAST writes the AST document of one class into dir
func createClassAST(t *testing.T, dir, name string, fields []string, methods ...method) {
	t.Helper()

	fieldDocs := map[string]interface{}{}
	for _, f := range fields {
		fieldDocs[f] = map[string]interface{}{
			"name":      f,
			"type":      "String",
			"modifiers": []string{"private"},
		}
	}

	methodDocs := map[string]interface{}{}
	for _, m := range methods {
		var params []map[string]interface{}
		types := make([]string, len(m.params))
		for i, p := range m.params {
			params = append(params, map[string]interface{}{"name": p, "type": "String"})
			types[i] = "String"
		}
		methodDocs[m.name+"("+strings.Join(types, ",")+")"] = map[string]interface{}{
			"name":       m.name,
			"returnType": "void",
			"modifiers":  []string{"public"},
			"parameters": params,
		}
	}

	doc := map[string]interface{}{
		"key":       "src/" + name + ".java/class/" + name,
		"name":      name,
		"type":      "class",
		"file_path": "src/" + name + ".java",
		"fields":    fieldDocs,
		"methods":   methodDocs,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to encode AST for %s: %v", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create AST directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		t.Fatalf("Failed to write AST for %s: %v", name, err)
	}
}

// createPaymentAST holds two methods sharing three parameters and nothing else
func createPaymentAST(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ast")
	createClassAST(t, dir, "Billing", nil, method{"charge", []string{"customerId", "amount", "currency"}})
	createClassAST(t, dir, "Refunds", nil, method{"refund", []string{"customerId", "amount", "currency"}})
	return dir
}
