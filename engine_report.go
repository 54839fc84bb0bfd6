package campusgate

import "context"

// SendContentReport relays a user-submitted content complaint to the support
// inbox through the email sender. Reports are rate limited per reporter.
//
// SendContentReport may return an error when input validation, dependency calls, or security checks fail.
// SendContentReport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SendContentReport(ctx context.Context, report ContentReport) error {
	if e == nil || e.emailSender == nil {
		return ErrEngineNotReady
	}
	if report.ContentType == "" || report.ContentID == "" || report.ReportDetails == "" || report.ReporterID == "" {
		e.emitAudit(ctx, auditEventContentReport, report.ReporterID, false, ErrInvalidInput, nil)
		return ErrInvalidInput
	}

	if err := e.acquireRateLimit(ctx, "content_report", report.ReporterID); err != nil {
		return err
	}

	if err := e.emailSender.SendReport(ctx, report); err != nil {
		e.emitAudit(ctx, auditEventContentReport, report.ReporterID, false, ErrEmailUnavailable, nil)
		e.logger.ErrorContext(ctx, "content report send failed",
			"reporter", report.ReporterID,
			"content_id", report.ContentID,
			"error", err,
		)
		return ErrEmailUnavailable
	}

	e.metricInc(MetricContentReportSent)
	e.emitAudit(ctx, auditEventContentReport, report.ReporterID, true, nil, func() map[string]string {
		return map[string]string{
			"content_type": report.ContentType,
			"content_id":   report.ContentID,
		}
	})
	return nil
}
