package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger     string                    `json:"swagger"`
		BasePath    string                    `json:"basePath"`
		Info        map[string]any            `json:"info"`
		Paths       map[string]map[string]any `json:"paths"`
		Definitions map[string]any            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Equal(t, "Printchain API", doc.Info["title"])
	assert.Contains(t, doc.Paths["/jobs/{id}/cascade"], "post")
	assert.Contains(t, doc.Paths["/webhooks/{source}/purchase-orders"], "post")
	assert.Contains(t, doc.Paths["/reconciliation/audit"], "get")
	assert.Contains(t, doc.Definitions, "reconciliation.AuditReportResponse")
	assert.Contains(t, doc.Definitions, "handler.ErrorResponse")
}
