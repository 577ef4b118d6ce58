// internal/agents/core/data-generator/models.go
package datagenerator

// Request asks the generator to fill the nil fields of Data.
type Request[T any] struct {
	Data        []T
	Context     map[string]interface{}
	Description string
}

type record = map[string]interface{}
