package mcp

import (
	"context"
	"fmt"

	"github.com/jivitsolutions/jivit-site/catalog/application"
	"github.com/jivitsolutions/jivit-site/catalog/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogHandler exposes the published catalog as read-only MCP tools. Every
// call goes through the same read-through cache as the public API.
type CatalogHandler struct {
	catalog *application.Catalog
}

func InitMcpCatalog(catalog *application.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) AddCatalogTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolListServices(), h.handleListServices)
	mcpServer.AddTool(h.toolListJobs(), h.handleListJobs)
	mcpServer.AddTool(h.toolListPrograms(), h.handleListPrograms)
	mcpServer.AddTool(h.toolListBlogs(), h.handleListBlogs)
	mcpServer.AddTool(h.toolGetBlog(), h.handleGetBlog)
}

func readOnlyTool(name, title, description string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append([]mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithTitleAnnotation(title),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	}, opts...)
	return mcp.NewTool(name, opts...)
}

func listResult[T any](kind string, items []T) *mcp.CallToolResult {
	payload := map[string]any{"count": len(items), "items": items}
	return mcp.NewToolResultStructured(payload, fmt.Sprintf("Found %d %s", len(items), kind))
}

func (h *CatalogHandler) toolListServices() mcp.Tool {
	return readOnlyTool(
		"catalog_list_services",
		"List Services",
		"List the published services offered by the company, optionally filtered by category.",
		mcp.WithString("category",
			mcp.Description("Only return services of this category, e.g. Cloud or Wellness."),
		),
	)
}

func (h *CatalogHandler) handleListServices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := h.catalog.Services.List(ctx, domain.ListFilter{Category: request.GetString("category", "")})
	if err != nil {
		return nil, err
	}
	return listResult("services", items), nil
}

func (h *CatalogHandler) toolListJobs() mcp.Tool {
	return readOnlyTool(
		"catalog_list_jobs",
		"List Job Openings",
		"List the open job positions, optionally filtered by department.",
		mcp.WithString("department",
			mcp.Description("Only return openings of this department."),
		),
	)
}

func (h *CatalogHandler) handleListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := h.catalog.Jobs.List(ctx, domain.ListFilter{Category: request.GetString("department", "")})
	if err != nil {
		return nil, err
	}
	return listResult("job openings", items), nil
}

func (h *CatalogHandler) toolListPrograms() mcp.Tool {
	return readOnlyTool(
		"catalog_list_programs",
		"List Student Programs",
		"List the published internship and student programs.",
	)
}

func (h *CatalogHandler) handleListPrograms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := h.catalog.Programs.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	return listResult("student programs", items), nil
}

func (h *CatalogHandler) toolListBlogs() mcp.Tool {
	return readOnlyTool(
		"catalog_list_blogs",
		"List Blog Posts",
		"List the published blog posts, newest first.",
	)
}

func (h *CatalogHandler) handleListBlogs(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := h.catalog.Blogs.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	return listResult("blog posts", items), nil
}

func (h *CatalogHandler) toolGetBlog() mcp.Tool {
	return readOnlyTool(
		"catalog_get_blog",
		"Get Blog Post",
		"Get one published blog post, including its HTML content, by slug.",
		mcp.WithString("slug",
			mcp.Description("The URL slug of the post, e.g. what-is-devops."),
			mcp.Required(),
		),
	)
}

func (h *CatalogHandler) handleGetBlog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := request.RequireString("slug")
	if err != nil {
		return nil, err
	}

	post, err := h.catalog.Blogs.GetBySlug(ctx, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultStructured(post, fmt.Sprintf("%s (%d min read)", post.Title, post.ReadingMinutes)), nil
}
