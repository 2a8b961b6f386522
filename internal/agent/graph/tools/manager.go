package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/marketplace-assistant/server/internal/agent/model"
)

const (
	ToolGetServiceDetails = "get_service_details"
)

// GetQueryTools returns the tools bound to the response model.
func GetQueryTools(catalog model.ServiceCatalog) []tool.BaseTool {
	return []tool.BaseTool{
		createServiceDetailsTool(catalog),
	}
}

// GetToolInfos collects tool schemas for binding to a chat model.
func GetToolInfos(ctx context.Context, tools []tool.BaseTool) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
