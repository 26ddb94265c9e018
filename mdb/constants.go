package mdb

func buildConstants(engine Engine) []Constant {
	list := []Constant{
		{Name: "SUCCESS", Value: Success},
		{Name: "API_ERROR", Value: APIError},
	}
	return append(list, engine.Constants()...)
}

// Constant looks up one symbolic value by name.
func (b *Binding) Constant(name string) (int64, bool) {
	for _, c := range b.constants {
		if c.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}
