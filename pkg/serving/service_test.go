package serving

import (
	"context"
	"errors"
	"math"
	"os"
	"testing"

	"github.com/underwriteiq/platform/pkg/common/logger"
	"github.com/underwriteiq/platform/pkg/common/models"
	"github.com/underwriteiq/platform/pkg/evidence"
	"github.com/underwriteiq/platform/pkg/features"
	"github.com/underwriteiq/platform/pkg/scoring"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func newTestService(publisher EventPublisher) *Service {
	scorer := scoring.NewScorer(models.StrategyRuleBased, nil)
	return NewService(evidence.DefaultCatalog(), scorer, publisher)
}

type capturePublisher struct {
	eventType string
	source    string
	data      map[string]interface{}
	err       error
}

func (p *capturePublisher) PublishEvent(_ context.Context, eventType string, source string, data map[string]interface{}) error {
	p.eventType = eventType
	p.source = source
	p.data = data
	return p.err
}

func TestScoreWithoutEvidence(t *testing.T) {
	service := newTestService(nil)

	result := service.Score(context.Background(), models.ScoreRequest{PolicyNumber: "POL-001"})

	if result.PolicyNumber != "POL-001" {
		t.Fatalf("expected policy POL-001, got %q", result.PolicyNumber)
	}
	if result.RiskScore != 0 {
		t.Fatalf("expected zero score, got %f", result.RiskScore)
	}
	if result.RiskLevel != models.RiskLevelLow {
		t.Fatalf("expected LOW, got %q", result.RiskLevel)
	}
	if result.ModelVersion != models.ModelVersionRuleBased {
		t.Fatalf("expected %q, got %q", models.ModelVersionRuleBased, result.ModelVersion)
	}
	if result.FeatureCount != models.DeclaredFeatureCount {
		t.Fatalf("expected feature count %d, got %d", models.DeclaredFeatureCount, result.FeatureCount)
	}
	if len(result.Features.Combined) != features.CombinedFeatureCount {
		t.Fatalf("expected %d combined features, got %d", features.CombinedFeatureCount, len(result.Features.Combined))
	}
}

func TestScoreHighRiskEvidence(t *testing.T) {
	service := newTestService(nil)

	req := models.ScoreRequest{
		PolicyNumber: "POL-002",
		MIBXML: `<MIBResponse>
			<RelationRoleCode>HIT</RelationRoleCode>
			<ResponseData>CARDIAC CONDITION</ResponseData>
			<BMI>41.0</BMI>
		</MIBResponse>`,
		RXXML: `<RxHistory>
			<DrugFill><DrugGenericName>OXYCODONE</DrugGenericName></DrugFill>
			<DrugFill><DrugGenericName>DIAZEPAM</DrugGenericName></DrugFill>
		</RxHistory>`,
	}
	result := service.Score(context.Background(), req)

	if result.RiskLevel != models.RiskLevelHigh {
		t.Fatalf("expected HIGH for loaded evidence, got %q at %f", result.RiskLevel, result.RiskScore)
	}
	if result.RiskScore <= 0.6 || result.RiskScore > 1.0 {
		t.Fatalf("expected score in (0.6, 1.0], got %f", result.RiskScore)
	}
	if got := result.Features.MIB["mib_has_hit"]; got != true {
		t.Fatalf("expected hit in MIB features, got %v", got)
	}
	if got := result.Features.RX["flag_opioid_and_benzo"]; got != true {
		t.Fatalf("expected opioid and benzo flag, got %v", got)
	}
}

func TestScoreIsIdempotent(t *testing.T) {
	service := newTestService(nil)
	req := models.ScoreRequest{
		PolicyNumber: "POL-003",
		MIBXML:       `<MIBResponse><ResponseData>DIABETES</ResponseData><BMI>32</BMI></MIBResponse>`,
	}

	first := service.Score(context.Background(), req)
	second := service.Score(context.Background(), req)

	if first.RiskScore != second.RiskScore || first.RiskLevel != second.RiskLevel {
		t.Fatalf("expected identical outcomes, got %f/%s vs %f/%s",
			first.RiskScore, first.RiskLevel, second.RiskScore, second.RiskLevel)
	}
}

func TestScorePublishesEvent(t *testing.T) {
	publisher := &capturePublisher{}
	service := newTestService(publisher)

	result := service.Score(context.Background(), models.ScoreRequest{PolicyNumber: "POL-004"})

	if publisher.eventType != "prediction.completed" {
		t.Fatalf("expected prediction.completed event, got %q", publisher.eventType)
	}
	if publisher.source != "inference-service" {
		t.Fatalf("expected inference-service source, got %q", publisher.source)
	}
	if publisher.data["policy_number"] != "POL-004" {
		t.Fatalf("expected policy number in event data, got %v", publisher.data)
	}
	if got, ok := publisher.data["risk_score"].(float64); !ok || math.Abs(got-result.RiskScore) > 1e-9 {
		t.Fatalf("expected risk score %f in event data, got %v", result.RiskScore, publisher.data["risk_score"])
	}
}

func TestScoreSurvivesPublishFailure(t *testing.T) {
	publisher := &capturePublisher{err: errors.New("broker unavailable")}
	service := newTestService(publisher)

	result := service.Score(context.Background(), models.ScoreRequest{PolicyNumber: "POL-005"})
	if result.RiskLevel != models.RiskLevelLow {
		t.Fatalf("expected scoring to complete despite publish failure, got %+v", result)
	}
}
