package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdf-field-stamper/internal/audit"
	"github.com/a3tai/pdf-field-stamper/internal/config"
	"github.com/a3tai/pdf-field-stamper/internal/descriptions"
	"github.com/a3tai/pdf-field-stamper/internal/pdf"
	"github.com/a3tai/pdf-field-stamper/internal/pdf/stamp"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	stampTool := mcp.NewTool(
		"pdf_stamp_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_stamp_fields")),
		mcp.WithString("pdfUrl",
			mcp.Required(),
			mcp.Description("Source document URL relative to the source directory, e.g. /sample.pdf"),
		),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description("JSON array of field placements: "+
				`[{"type":"text","value":"Jane","xRel":0.1,"yRel":0.1,"wRel":0.3,"hRel":0.05}]`),
		),
	)
	s.mcpServer.AddTool(stampTool, s.handleStampFields)

	verifyTool := mcp.NewTool(
		"pdf_verify_output",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_verify_output")),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Output id returned by pdf_stamp_fields"),
		),
	)
	s.mcpServer.AddTool(verifyTool, s.handleVerifyOutput)

	infoTool := mcp.NewTool(
		"pdf_document_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_document_info")),
		mcp.WithString("pdfUrl",
			mcp.Required(),
			mcp.Description("Source document URL relative to the source directory"),
		),
	)
	s.mcpServer.AddTool(infoTool, s.handleDocumentInfo)
}

// Handler functions
func (s *Server) handleStampFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pdfURL, err := request.RequireString("pdfUrl")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawFields, err := request.RequireString("fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var fields []stamp.Field
	if err := json.Unmarshal([]byte(rawFields), &fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fields must be a JSON array of placements: %v", err)), nil
	}

	result, err := s.pdfService.GenerateSignedPDF(ctx, pdf.GenerateSignedPDFRequest{PDFURL: pdfURL, Fields: fields})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatStampResult(result, len(fields))), nil
}

func (s *Server) handleVerifyOutput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.VerifyOutput(pdf.VerifyOutputRequest{ID: id})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatVerifyResult(result)), nil
}

func (s *Server) handleDocumentInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pdfURL, err := request.RequireString("pdfUrl")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.DocumentInfo(pdf.DocumentInfoRequest{PDFURL: pdfURL})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Document: %s\n", result.PDFURL)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("First page: %.2f x %.2f pt\n", result.PageWidth, result.PageHeight)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Size limit: %d bytes\n", result.MaxFileSize)
	text += fmt.Sprintf("SHA-256: %s\n", result.Hash)
	return mcp.NewToolResultText(text), nil
}

func (s *Server) formatStampResult(result *pdf.GenerateSignedPDFResult, fieldCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stamped %d field(s)\n", fieldCount)
	fmt.Fprintf(&b, "Output: %s\n", result.SignedPDFURL)
	fmt.Fprintf(&b, "Output file: %s\n", s.outputPath(result.ID))
	fmt.Fprintf(&b, "ID: %s\n", result.ID)
	fmt.Fprintf(&b, "Original SHA-256: %s\n", result.OriginalHash)
	fmt.Fprintf(&b, "Final SHA-256: %s\n", result.FinalHash)
	return b.String()
}

func (s *Server) formatVerifyResult(result *pdf.VerifyOutputResult) string {
	var b strings.Builder
	if result.Verified {
		b.WriteString("Output verified: the stored document matches its audit record\n")
	} else {
		b.WriteString("Output NOT verified: the stored document is missing or has changed\n")
	}
	if rec := result.Record; rec != nil {
		fmt.Fprintf(&b, "ID: %s\n", rec.ID)
		fmt.Fprintf(&b, "Source: %s\n", rec.Source)
		fmt.Fprintf(&b, "Output: %s\n", rec.OutputLocation)
		fmt.Fprintf(&b, "Fields: %d\n", rec.FieldCount)
		fmt.Fprintf(&b, "Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(&b, "Original SHA-256: %s\n", rec.OriginalHash)
		fmt.Fprintf(&b, "Final SHA-256: %s\n", rec.FinalHash)
	}
	return b.String()
}

func (s *Server) outputPath(id string) string {
	return filepath.Join(s.pdfService.OutputDirectory(), audit.DocumentName(id))
}

// Run serves MCP over standard I/O until stdin closes or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF stamper MCP server in stdio mode")
		log.Printf("Source directory: %s", s.pdfService.SourceDirectory())
		log.Printf("Output directory: %s", s.pdfService.OutputDirectory())
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(io.Discard, "", 0))
	if s.config.IsDebug() {
		stdio.SetErrorLogger(log.Default())
	}

	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
