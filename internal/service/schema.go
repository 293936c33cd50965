package service

// Object builds an object InputSchema from properties and required names.
func Object(props map[string]Property, required ...string) InputSchema {
	if props == nil {
		props = map[string]Property{}
	}
	return InputSchema{Type: "object", Properties: props, Required: required}
}

// StringProp is a string property.
func StringProp(desc string) Property {
	return Property{Type: "string", Description: desc}
}

// NumberProp is a number property.
func NumberProp(desc string) Property {
	return Property{Type: "number", Description: desc}
}

// BoolProp is a boolean property.
func BoolProp(desc string) Property {
	return Property{Type: "boolean", Description: desc}
}

// StringArrayProp is an array-of-strings property.
func StringArrayProp(desc string) Property {
	return Property{Type: "array", Description: desc, Items: &Property{Type: "string"}}
}

// ObjectProp is a free-form object property.
func ObjectProp(desc string) Property {
	return Property{Type: "object", Description: desc}
}

// ChainIDProp is the shared chainId property.
func ChainIDProp() Property {
	return Property{Type: "number", Description: "EVM chain ID (1 Ethereum, 56 BNB, 137 Polygon, 42161 Arbitrum, 10 Optimism, 8453 Base)", Default: 1}
}
