package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"gridwright/engine/internal/errinfo"
	"gridwright/engine/internal/exec"
	"gridwright/engine/internal/grid"
	"gridwright/engine/internal/logging"
	"gridwright/engine/internal/session"
	"gridwright/engine/internal/settings"
	"gridwright/engine/internal/xlsx"
)

const (
	EngineName = "gridwright-engine"
	APIVersion = "1"
)

// Service wires the session controller and document storage to RPC methods.
type Service struct {
	controller *session.Controller
	store      *settings.Store
	docPath    string
	version    string
	logger     *slog.Logger
}

func NewService(controller *session.Controller, store *settings.Store, version string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		controller: controller,
		store:      store,
		version:    version,
		logger:     logger,
	}
}

func (s *Service) RegisterAll(server *Server) {
	server.Register("EngineGetInfo", s.EngineGetInfo)
	server.Register("DocumentOpen", s.DocumentOpen)
	server.Register("DocumentCreate", s.DocumentCreate)
	server.Register("DocumentSave", s.DocumentSave)
	server.Register("DocumentSummary", s.DocumentSummary)
	server.Register("InstructionApply", s.InstructionApply)
	server.Register("InstructionApplyText", s.InstructionApplyText)
	server.Register("ProvidersSetApiKey", s.ProvidersSetApiKey)
	server.Register("SettingsGet", s.SettingsGet)
	server.Register("SettingsUpdate", s.SettingsUpdate)
}

func errorFrom(info *errinfo.ErrorInfo) *Error {
	return &Error{Message: info.ErrorCode, Data: info}
}

func instructionError(err error) *Error {
	if info, ok := session.ErrorInfoFrom(err); ok {
		return errorFrom(info)
	}
	return &Error{Message: err.Error()}
}

func (s *Service) EngineGetInfo(ctx context.Context, params json.RawMessage) (any, *Error) {
	return map[string]any{
		"name":        EngineName,
		"version":     s.version,
		"api_version": APIVersion,
	}, nil
}

type documentOpenParams struct {
	Path string `json:"path"`
}

func (s *Service) DocumentOpen(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p documentOpenParams
	if err := json.Unmarshal(params, &p); err != nil || strings.TrimSpace(p.Path) == "" {
		return nil, &Error{Message: "path is required"}
	}
	wb, err := xlsx.Load(p.Path)
	if err != nil {
		return nil, errorFrom(errinfo.DocumentLoadFailed(err.Error()))
	}
	s.controller.SetWorkbook(wb)
	s.docPath = p.Path
	s.logger.Info("document.opened", "path", p.Path, "sheets", len(wb.SheetNames()))
	return map[string]any{
		"sheets":  wb.SheetNames(),
		"summary": wb.Summary(),
	}, nil
}

type documentCreateParams struct {
	Sheet string `json:"sheet,omitempty"`
	Path  string `json:"path,omitempty"`
}

func (s *Service) DocumentCreate(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p documentCreateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &Error{Message: "invalid params"}
		}
	}
	sheet := strings.TrimSpace(p.Sheet)
	if sheet == "" {
		sheet = "Sheet1"
	}
	wb := grid.NewWithSheet(sheet)
	s.controller.SetWorkbook(wb)
	s.docPath = strings.TrimSpace(p.Path)
	s.logger.Info("document.created", "sheet", sheet)
	return map[string]any{"sheets": wb.SheetNames()}, nil
}

type documentSaveParams struct {
	Path string `json:"path,omitempty"`
}

func (s *Service) DocumentSave(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p documentSaveParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &Error{Message: "invalid params"}
		}
	}
	path := strings.TrimSpace(p.Path)
	if path == "" {
		path = s.docPath
	}
	if path == "" {
		return nil, errorFrom(errinfo.DocumentSaveFailed("no document path"))
	}
	if err := xlsx.Save(s.controller.Workbook(), path); err != nil {
		return nil, errorFrom(errinfo.DocumentSaveFailed(err.Error()))
	}
	s.docPath = path
	s.logger.Info("document.saved", "path", path)
	return map[string]any{"path": path}, nil
}

func (s *Service) DocumentSummary(ctx context.Context, params json.RawMessage) (any, *Error) {
	return map[string]any{"summary": s.controller.Summary()}, nil
}

type instructionParams struct {
	Text string `json:"text"`
}

func (s *Service) InstructionApply(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p instructionParams
	if err := json.Unmarshal(params, &p); err != nil || strings.TrimSpace(p.Text) == "" {
		return nil, &Error{Message: "text is required"}
	}
	report, err := s.controller.Apply(ctx, p.Text)
	if err != nil {
		return nil, instructionError(err)
	}
	return reportPayload(report), nil
}

func (s *Service) InstructionApplyText(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p instructionParams
	if err := json.Unmarshal(params, &p); err != nil || strings.TrimSpace(p.Text) == "" {
		return nil, &Error{Message: "text is required"}
	}
	report, err := s.controller.ApplyText(ctx, p.Text)
	if err != nil {
		return nil, instructionError(err)
	}
	return reportPayload(report), nil
}

type setAPIKeyParams struct {
	ProviderID string `json:"provider_id"`
	APIKey     string `json:"api_key"`
}

func (s *Service) ProvidersSetApiKey(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p setAPIKeyParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &Error{Message: "invalid params"}
	}
	providerID := strings.TrimSpace(p.ProviderID)
	if providerID == "" || strings.TrimSpace(p.APIKey) == "" {
		return nil, &Error{Message: "provider_id and api_key are required"}
	}
	if client, ok := s.controller.Client(providerID); ok {
		if err := client.ValidateKey(ctx, strings.TrimSpace(p.APIKey)); err != nil {
			return nil, errorFrom(errinfo.ProviderAuthFailed(providerID))
		}
	}
	s.controller.SetAPIKey(providerID, p.APIKey)
	s.logger.Info("providers.key_set", "provider", providerID)
	return map[string]any{"ok": true}, nil
}

func (s *Service) SettingsGet(ctx context.Context, params json.RawMessage) (any, *Error) {
	current, err := s.store.Load()
	if err != nil {
		return nil, &Error{Message: "settings load failed", Data: err.Error()}
	}
	return current, nil
}

type settingsUpdateParams struct {
	DefaultModelID *string `json:"default_model_id,omitempty"`
	MaxBatchOps    *int    `json:"max_batch_ops,omitempty"`
	ForceDelete    *bool   `json:"force_delete,omitempty"`
}

func (s *Service) SettingsUpdate(ctx context.Context, params json.RawMessage) (any, *Error) {
	var p settingsUpdateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &Error{Message: "invalid params"}
	}
	updated, err := s.store.Update(func(current *settings.Settings) {
		if p.DefaultModelID != nil {
			current.DefaultModelID = *p.DefaultModelID
		}
		if p.MaxBatchOps != nil {
			current.MaxBatchOps = *p.MaxBatchOps
		}
		if p.ForceDelete != nil {
			current.ForceDelete = *p.ForceDelete
		}
	})
	if err != nil {
		return nil, &Error{Message: "settings update failed", Data: err.Error()}
	}
	s.controller.SetSettings(updated)
	return updated, nil
}

type changePayload struct {
	Index   int    `json:"index"`
	Op      string `json:"op"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

type rejectionPayload struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

type parseErrorPayload struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

func reportPayload(report *exec.Report) map[string]any {
	changes := make([]changePayload, 0, len(report.Changes))
	for _, change := range report.Changes {
		payload := changePayload{
			Index:   change.Index,
			Op:      change.Op.String(),
			Applied: change.Applied,
		}
		if change.Err != "" {
			payload.Error = change.Err
		}
		changes = append(changes, payload)
	}
	rejections := make([]rejectionPayload, 0, len(report.Rejections))
	for _, rejection := range report.Rejections {
		rejections = append(rejections, rejectionPayload{
			Index:  rejection.Index,
			Op:     rejection.Op.String(),
			Reason: string(rejection.Reason),
			Detail: rejection.Detail,
		})
	}
	parseErrors := make([]parseErrorPayload, 0, len(report.ParseErrors))
	for _, parseError := range report.ParseErrors {
		parseErrors = append(parseErrors, parseErrorPayload{
			Line:   parseError.Line,
			Raw:    parseError.Raw,
			Reason: parseError.Reason,
		})
	}
	return map[string]any{
		"applied":      report.AppliedCount(),
		"failed":       report.FailedCount(),
		"changes":      changes,
		"rejections":   rejections,
		"parse_errors": parseErrors,
		"rendered":     report.Render(),
	}
}
