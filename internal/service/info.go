package service

import "github.com/kisaansahayak/sahayak/internal/domain"

// ServiceName is reported by the health endpoint.
const ServiceName = "KisaanSahayak Backend"

var farmingTips = []string{
	"Plant tomatoes after the last frost date in your area for best results.",
	"Rotate your crops each season to maintain soil health and prevent pest buildup.",
	"Water plants early in the morning to reduce evaporation and disease risk.",
	"Compost organic matter to create nutrient-rich soil for your crops.",
	"Use companion planting to naturally repel pests and improve crop yields.",
}

// Tips returns the static farming tips.
func (s *Service) Tips() *domain.TipsResponse {
	tips := make([]string, len(farmingTips))
	copy(tips, farmingTips)
	return &domain.TipsResponse{Tips: tips, Timestamp: s.timestamp()}
}

// Health reports gateway liveness and the configured upstream.
func (s *Service) Health() *domain.HealthResponse {
	return &domain.HealthResponse{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: s.timestamp(),
		PythonAPI: s.config.PythonAPIURL,
	}
}

// History returns the server-side history for a session. The gateway keeps no
// history, so the list is always empty.
func (s *Service) History(sessionID string) *domain.HistoryResponse {
	return &domain.HistoryResponse{
		SessionID: sessionID,
		Messages:  []domain.Message{},
		Timestamp: s.timestamp(),
	}
}
