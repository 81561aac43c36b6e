package tools

// Helpers for the JSON schemas of tool arguments. Every schema is an
// object that rejects unknown properties.

func object(props map[string]any, required ...string) map[string]any {
	s := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func strDefault(desc, def string) map[string]any {
	s := str(desc)
	s["default"] = def
	return s
}

func enum(desc string, def string, values []string) map[string]any {
	s := map[string]any{"type": "string", "description": desc, "enum": values}
	if def != "" {
		s["default"] = def
	}
	return s
}

func integer(desc string, def any) map[string]any {
	s := map[string]any{"type": "integer", "description": desc}
	if def != nil {
		s["default"] = def
	}
	return s
}

func intRange(desc string, def any, minimum, maximum int) map[string]any {
	s := integer(desc, def)
	s["minimum"] = minimum
	s["maximum"] = maximum
	return s
}

func positive(desc string, def any) map[string]any {
	s := integer(desc, def)
	s["minimum"] = 1
	return s
}

func number(desc string, def any) map[string]any {
	s := map[string]any{"type": "number", "description": desc}
	if def != nil {
		s["default"] = def
	}
	return s
}

func fraction(desc string, def float64) map[string]any {
	s := number(desc, def)
	s["minimum"] = 0
	s["maximum"] = 1
	return s
}

func boolean(desc string, def bool) map[string]any {
	return map[string]any{"type": "boolean", "description": desc, "default": def}
}

func colorComponent(name string, def int) map[string]any {
	return intRange(name+" component (0-255)", def, 0, 255)
}

func hex(desc string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": desc,
		"pattern":     "^#?([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$",
	}
}

var hexColor = hex("Hex color such as \"#FF8800\" or \"F80\". Overrides the color_r/g/b components.")

var noArgs = object(map[string]any{})

func positiveNumber(desc string, def any) map[string]any {
	s := number(desc, def)
	s["exclusiveMinimum"] = 0
	return s
}
