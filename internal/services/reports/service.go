// Package reports renders completed diagnosis jobs as downloadable PDF
// reports.
package reports

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/jaiswar203/CreatorEvolve-Server/internal/interfaces"
	"github.com/jaiswar203/CreatorEvolve-Server/internal/models"
)

// Service generates diagnosis PDF reports and stores them alongside the
// other media artifacts.
type Service struct {
	objects interfaces.ObjectStorage
	store   interfaces.DiagnoseStorage
	summary interfaces.SummaryClient
	logger  arbor.ILogger
}

// NewService creates a report service. The summary client is optional; when
// nil the report is generated without the plain-language section.
func NewService(objects interfaces.ObjectStorage, store interfaces.DiagnoseStorage, summary interfaces.SummaryClient, logger arbor.ILogger) *Service {
	return &Service{
		objects: objects,
		store:   store,
		summary: summary,
		logger:  logger,
	}
}

// Generate builds the PDF for a completed diagnose job, stores it and
// records the report key on the job. Returns the public URL of the report.
func (s *Service) Generate(ctx context.Context, jobID string) (string, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != models.JobStatusCompleted || job.Diagnosis == nil {
		return "", &models.ValidationError{Field: "job_id", Message: "diagnosis report requires a completed job"}
	}

	summaryText := job.Summary
	if summaryText == "" && s.summary != nil {
		summaryText, err = s.summary.SummarizeDiagnosis(ctx, job.Diagnosis)
		if err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobID).Msg("Summary generation failed, report will omit it")
			summaryText = ""
		} else if setErr := s.store.SetSummary(ctx, jobID, summaryText); setErr != nil {
			s.logger.Warn().Err(setErr).Str("job_id", jobID).Msg("Failed to persist diagnosis summary")
		}
	}

	pdfBytes, err := render(job, summaryText)
	if err != nil {
		return "", fmt.Errorf("failed to render diagnosis report: %w", err)
	}

	key, err := s.objects.Put(ctx, bytes.NewReader(pdfBytes), fmt.Sprintf("%s_report.pdf", job.ID))
	if err != nil {
		return "", fmt.Errorf("failed to store diagnosis report: %w", err)
	}

	if err := s.store.SetReportKey(ctx, jobID, key); err != nil {
		return "", err
	}

	s.logger.Info().
		Str("job_id", jobID).
		Str("report_key", key).
		Int("pdf_size", len(pdfBytes)).
		Msg("Diagnosis report generated")

	return s.objects.GetURL(key), nil
}

func render(job *models.DiagnoseJob, summaryText string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Audio Diagnosis Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 5, fmt.Sprintf("Job %s  -  generated %s", job.ID, time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	d := job.Diagnosis

	if summaryText != "" {
		sectionHeading(pdf, "Summary")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, summaryText, "", "L", false)
		pdf.Ln(3)
	}

	if d.QualityScore != nil || d.NoiseScore != nil {
		sectionHeading(pdf, "Scores")
		rows := [][2]string{}
		if d.QualityScore != nil {
			rows = append(rows, [2]string{"Overall quality", fmt.Sprintf("%.1f / 10", d.QualityScore.Average)})
			if d.QualityScore.WorstSegment != nil {
				rows = append(rows, [2]string{"Worst segment", fmt.Sprintf("%.1f (%.0fs - %.0fs)",
					d.QualityScore.WorstSegment.Score, d.QualityScore.WorstSegment.Start, d.QualityScore.WorstSegment.End)})
			}
		}
		if d.NoiseScore != nil {
			rows = append(rows, [2]string{"Noise", fmt.Sprintf("%.1f / 10", d.NoiseScore.Average)})
		}
		rows = append(rows,
			[2]string{"Music detected", fmt.Sprintf("%.0f%%", d.MusicDetected)},
			[2]string{"Silence", fmt.Sprintf("%.0f%%", d.SilenceRatio*100)},
		)
		keyValueTable(pdf, rows)
	}

	if d.MediaInfo != nil {
		sectionHeading(pdf, "Media")
		keyValueTable(pdf, [][2]string{
			{"Container", d.MediaInfo.ContainerKind},
			{"Codec", d.MediaInfo.CodecKind},
			{"Duration", fmt.Sprintf("%.1fs", d.MediaInfo.DurationSecs)},
			{"Bitrate", fmt.Sprintf("%d bps", d.MediaInfo.Bitrate)},
			{"Sample rate", fmt.Sprintf("%d Hz", d.MediaInfo.SampleRate)},
			{"Channels", fmt.Sprintf("%d", d.MediaInfo.Channels)},
		})
	}

	if d.QualityScore != nil && len(d.QualityScore.Distribution) > 0 {
		sectionHeading(pdf, "Quality distribution")
		distributionTable(pdf, d.QualityScore.Distribution)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
}

func keyValueTable(pdf *fpdf.Fpdf, rows [][2]string) {
	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(45, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func distributionTable(pdf *fpdf.Fpdf, bands []models.Band) {
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(30, 6, "Score", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 6, "Share of content", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 8)
	for _, band := range bands {
		pdf.CellFormat(30, 6, fmt.Sprintf("%.0f", band.Score), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.1f%%", band.Percentage), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
}
