package tools

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/model"
)

// ===================================
// Service Details Tool
// ===================================

type ServiceDetailsInput struct {
	Query      string `json:"query,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
}

type ServiceDetailsOutput struct {
	Services []model.ServiceContext `json:"services"`
	Total    int                    `json:"total"`
}

func createServiceDetailsTool(catalog model.ServiceCatalog) tool.InvokableTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetServiceDetails,
			Desc: "List the services offered on the marketplace with their minimum budget and currency. Use it when the client asks what services exist or how much a service costs at minimum.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type: "string",
					Desc: "Optional keywords to filter services by name, e.g. website, logo, app.",
				},
				"max_results": {
					Type: "number",
					Desc: "Maximum number of services to return (default: 10, max: 20)",
				},
			}),
		},
		func(ctx context.Context, in *ServiceDetailsInput) (*ServiceDetailsOutput, error) {
			return findServices(catalog, in), nil
		},
	)
}

func findServices(catalog model.ServiceCatalog, in *ServiceDetailsInput) *ServiceDetailsOutput {
	maxResults := in.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 20 {
		maxResults = 20
	}

	words := strings.Fields(strings.ToLower(in.Query))
	matched := []model.ServiceContext{}
	for _, svc := range catalog.Services() {
		if matchesAny(strings.ToLower(svc.Name), words) {
			matched = append(matched, svc)
		}
	}
	if len(matched) > maxResults {
		matched = matched[:maxResults]
	}
	return &ServiceDetailsOutput{Services: matched, Total: len(matched)}
}

func matchesAny(name string, words []string) bool {
	if len(words) == 0 {
		return true
	}
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}
