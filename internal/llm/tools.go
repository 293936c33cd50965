package llm

import (
	"github.com/cloudwego/eino/schema"

	"github.com/devansh-m12/doraemon-sub001/internal/service"
)

// toolInfos converts MCP tool manifests into eino tool descriptions.
func toolInfos(defs []service.ToolDefinition) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, d := range defs {
		required := make(map[string]bool, len(d.InputSchema.Required))
		for _, r := range d.InputSchema.Required {
			required[r] = true
		}
		params := make(map[string]*schema.ParameterInfo, len(d.InputSchema.Properties))
		for name, p := range d.InputSchema.Properties {
			info := parameterInfo(p)
			info.Required = required[name]
			params[name] = info
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        d.Name,
			Desc:        d.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func parameterInfo(p service.Property) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type: dataType(p.Type),
		Desc: p.Description,
		Enum: p.Enum,
	}
	if p.Items != nil {
		info.ElemInfo = parameterInfo(*p.Items)
	}
	return info
}

func dataType(t string) schema.DataType {
	switch t {
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "array":
		return schema.Array
	case "object":
		return schema.Object
	default:
		return schema.String
	}
}
