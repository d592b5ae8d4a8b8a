package v1

import (
	"github.com/shenikar/disaster_report_bot/internal/models"
	"github.com/shenikar/disaster_report_bot/internal/service"
)

// DTOToReportModel преобразует DTO создания в доменную модель.
// Тип бедствия уже проверен хендлером, статус и ID проставляются здесь.
func DTOToReportModel(dto CreateReportRequest) *models.Report {
	attachments := make([]models.Attachment, 0, len(dto.Attachments))
	for _, a := range dto.Attachments {
		attachments = append(attachments, models.Attachment{
			FileID:   a.FileID,
			FileType: a.FileType,
		})
	}

	username := dto.Username
	if username == "" {
		username = "Anonymous"
	}

	return &models.Report{
		ID:          models.NewReportID(),
		UserID:      dto.UserID,
		Username:    username,
		Type:        models.DisasterType(dto.DisasterType),
		Severity:    models.Severity(dto.Severity),
		Latitude:    dto.Latitude,
		Longitude:   dto.Longitude,
		Description: dto.Description,
		Attachments: attachments,
		Status:      models.StatusPending,
		Source:      "API",
	}
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.Report) *ReportResponse {
	attachments := make([]AttachmentDTO, 0, len(model.Attachments))
	for _, a := range model.Attachments {
		attachments = append(attachments, AttachmentDTO{
			FileID:   a.FileID,
			FileType: a.FileType,
		})
	}

	return &ReportResponse{
		ID:           model.ID,
		UserID:       model.UserID,
		Username:     model.Username,
		DisasterType: string(model.Type),
		Severity:     string(model.Severity),
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		Description:  model.Description,
		Attachments:  attachments,
		Status:       string(model.Status),
		Source:       model.Source,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(models []*models.Report) []*ReportResponse {
	responses := make([]*ReportResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToReportResponse(model)
	}
	return responses
}

// StatsToResponse преобразует статистику сервиса в DTO
func StatsToResponse(stats *service.Stats) *StatsResponse {
	return &StatsResponse{
		TotalReports:      stats.TotalReports,
		PendingReports:    stats.PendingReports,
		ResolvedReports:   stats.ResolvedReports,
		CriticalReports:   stats.CriticalReports,
		DisasterTypes:     stats.DisasterTypes,
		SeverityBreakdown: stats.SeverityBreakdown,
		RecentReports:     ModelsToReportResponses(stats.RecentReports),
	}
}
