package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolDescriptions(t *testing.T) {
	assert.Equal(t,
		[]string{ToolCompareDocuments, ToolExtractDocument, ToolReadSpreadsheet, ToolServerInfo},
		GetAllToolNames(),
	)

	for _, name := range GetAllToolNames() {
		assert.NotEqual(t, "Tool description not available", GetToolDescription(name), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}
