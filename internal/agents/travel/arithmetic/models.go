// internal/agents/travel/arithmetic/models.go
package arithmetic

type operands struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

type operation struct {
	name        string
	description string
	apply       func(a, b float64) (float64, error)
}
