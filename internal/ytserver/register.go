// Package ytserver registers the YouTube scraping tools on an MCP server.
package ytserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_tube/internal/engine"
	"github.com/anatolykoptev/go_tube/internal/engine/download"
	"github.com/anatolykoptev/go_tube/internal/engine/service"
)

// Deps are the services the tools run on. Download may be nil; the
// download_audio tool is then not registered.
type Deps struct {
	Search   *service.Search
	Playlist *service.Playlist
	Download *download.Service
}

// RegisterTools registers youtube_search, playlist_metadata, and
// download_audio on the given MCP server.
func RegisterTools(server *mcp.Server, deps Deps) {
	registerSearch(server, deps.Search)
	registerPlaylist(server, deps.Playlist)
	if deps.Download != nil {
		registerDownload(server, deps.Download)
	}
}

func registerSearch(server *mcp.Server, svc *service.Search) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_search",
		Description: "Search YouTube videos by keyword. Returns structured JSON with video details (title, channel, publish date, view count, description, URL). Supports limit (1-100) and sort_by (relevance or date).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.SearchInput) (*mcp.CallToolResult, engine.SearchResult, error) {
		result, err := svc.Run(ctx, input.Keyword, input.Limit, input.SortBy)
		if err != nil {
			return nil, engine.SearchResult{}, err
		}
		return nil, result, nil
	})
}

func registerPlaylist(server *mcp.Server, svc *service.Playlist) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "playlist_metadata",
		Description: "Fetch all tracks of a YouTube playlist in order, paging through continuations. Returns title, declared video count, and per-track details. The partial flag marks results cut short by time or batch budgets.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.PlaylistInput) (*mcp.CallToolResult, engine.Playlist, error) {
		playlist, err := svc.Run(ctx, input.PlaylistURL, input.ForceRefresh)
		if err != nil {
			return nil, engine.Playlist{}, err
		}
		return nil, playlist, nil
	})
}

func registerDownload(server *mcp.Server, svc *download.Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "download_audio",
		Description: "Download the audio track of a YouTube video as mp3 via yt-dlp. Returns the file path, size, and expiry of the stored audio.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.DownloadInput) (*mcp.CallToolResult, download.Record, error) {
		rec, err := svc.Download(ctx, input.VideoID)
		if err != nil {
			return nil, download.Record{}, err
		}
		return nil, rec, nil
	})
}
