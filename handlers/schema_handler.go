package handlers

import (
	"net/http"
	"sync"

	"github.com/formcraft/formcraft-backend/internal/formdef"
	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"
)

var (
	definitionSchemaOnce sync.Once
	definitionSchema     *jsonschema.Schema
)

// FormDefinitionSchemaHandler godoc
// @Summary JSON Schema of a form definition
// @Tags schema
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /schema/form-definition [get]
// @Security BearerAuth
func FormDefinitionSchemaHandler(c *gin.Context) {
	definitionSchemaOnce.Do(func() { definitionSchema = formdef.Schema() })
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, definitionSchema)
}
