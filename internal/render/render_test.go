package render

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillaudit/internal/catalog"
	"skillaudit/internal/compliance"
	"skillaudit/internal/report/models"
	"skillaudit/internal/scoring"
	id "skillaudit/pkg/domain"
)

// scoredReport builds a fully scored CDC report straight through the
// scoring pipeline so rendered numbers match real engine output.
func scoredReport(t *testing.T, placement bool) *models.AuditReport {
	t.Helper()
	cat, err := catalog.Get(catalog.CenterCDC, placement)
	require.NoError(t, err)

	var inputs []scoring.Input
	for _, area := range cat.Areas {
		for _, cp := range area.Checkpoints {
			inputs = append(inputs, scoring.Input{
				CheckpointID:     cp.ID,
				TotalSamples:     10,
				SamplesCompliant: 10,
				Remarks:          "verified on site",
			})
		}
	}
	scored, err := scoring.Recompute(cat, inputs)
	require.NoError(t, err)
	totals := scoring.Aggregate(cat, scored)
	verdict := compliance.Classify(cat, totals)

	obs := make([]models.Observation, len(scored))
	for i, sc := range scored {
		obs[i] = models.Observation{
			CheckpointID:     sc.CheckpointID,
			TotalSamples:     sc.TotalSamples,
			SamplesCompliant: sc.SamplesCompliant,
			Remarks:          sc.Remarks,
			CompliantPercent: sc.Percent,
			Score:            sc.Score,
			MaxScore:         sc.MaxScore,
		}
	}

	return &models.AuditReport{
		ID:                  id.ReportID(uuid.New()),
		CenterCode:          "DL-0042",
		CenterName:          "Rohini Skill Center",
		CenterType:          catalog.CenterCDC,
		FinancialYear:       "2025-26",
		AuditDate:           time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		PlacementApplicable: placement,
		Observations:        obs,
		AreaTotals:          totals.Areas,
		GrandTotal:          totals.Grand,
		AreaStatuses:        verdict.Areas,
		OverallStatus:       verdict.Overall,
		Status:              models.StatusApproved,
		AuditorRemarks:      "clean audit",
	}
}

func TestBuildView(t *testing.T) {
	v, err := Build(scoredReport(t, true))
	require.NoError(t, err)

	assert.Len(t, v.Summary, 4)
	assert.Len(t, v.Details, 4)
	assert.InDelta(t, 100.0, v.GrandTotal, 0.001)
	assert.Equal(t, "Compliant", v.Overall)
	assert.Equal(t, "green", v.OverallColor)
	assert.Equal(t, "12 Mar 2026", v.AuditDate)
}

func TestBuildViewPlacementNA(t *testing.T) {
	v, err := Build(scoredReport(t, false))
	require.NoError(t, err)

	var placement *AreaRow
	for i := range v.Summary {
		if v.Summary[i].Name == string(catalog.AreaPlacement) {
			placement = &v.Summary[i]
		}
	}
	require.NotNil(t, placement)
	assert.False(t, placement.Applicable)
	assert.Equal(t, "NA", placement.Status)

	for _, d := range v.Details {
		if d.Name == string(catalog.AreaPlacement) {
			assert.Empty(t, d.Checkpoints)
		}
	}
}

func TestSubjectFormat(t *testing.T) {
	v, err := Build(scoredReport(t, true))
	require.NoError(t, err)
	assert.Equal(t, "Audit Report - Rohini Skill Center - Score: 100.00/100 - Compliant", v.Subject())
	assert.Equal(t, "audit-DL-0042-2025-26.pdf", v.Filename("pdf"))
}

func TestHTMLContainsScoresAndColors(t *testing.T) {
	v, err := Build(scoredReport(t, true))
	require.NoError(t, err)

	out, err := HTML(v)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Rohini Skill Center")
	assert.Contains(t, html, "100.00 / 100.00")
	assert.Contains(t, html, "color: green")
	assert.Contains(t, html, "Enquiry and counselling register")
	assert.Contains(t, html, "verified on site")
}

func TestHTMLShowsNAForPlacement(t *testing.T) {
	v, err := Build(scoredReport(t, false))
	require.NoError(t, err)

	out, err := HTML(v)
	require.NoError(t, err)
	assert.Contains(t, string(out), ">NA<")
}

func TestPDFProducesDocument(t *testing.T) {
	v, err := Build(scoredReport(t, true))
	require.NoError(t, err)

	out, err := PDF(v)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}
