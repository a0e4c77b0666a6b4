package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressManager_NonInteractiveWriter(t *testing.T) {
	pm := NewProgressManager()
	var buf bytes.Buffer
	pm.SetWriter(&buf)

	assert.False(t, pm.IsInteractive(), "buffers are never terminals")

	pm.Initialize(10)
	pm.Start()
	pm.Describe("Field Detector")
	pm.Update(5, 10)
	pm.Update(1, 4)
	pm.Complete(true)
	pm.Close()

	assert.Empty(t, buf.String())
}

func TestProgressManager_InteractiveRendering(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf, interactive: true, label: "Detecting"}

	pm.Describe("Parameter Detector")
	pm.Update(2, 4)
	pm.Update(1, 8)
	assert.Equal(t, 8, pm.maxValue, "a new total resets the bar")
	pm.Complete(true)
	pm.Close()

	assert.Contains(t, buf.String(), "Parameter Detector")
}
