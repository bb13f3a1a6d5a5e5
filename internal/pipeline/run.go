package pipeline

import (
	"encoding/json"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/entity"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/extract"
)

const inlineSource = "inline"

// NewRun converts a request outcome into a history record.
func NewRun(res *Result, err error) entity.ComparisonRun {
	if res == nil {
		res = &Result{}
	}
	run := entity.ComparisonRun{
		RequestID:     res.RequestID,
		POSource:      sourceLabel(res.POSource),
		InvoiceSource: sourceLabel(res.InvoiceSource),
		POType:        res.POType.String(),
		InvoiceType:   res.InvoiceType.String(),
		Reasoner:      res.Reasoner,
		StartedAt:     res.StartedAt,
		FinishedAt:    res.FinishedAt,
	}

	if err != nil {
		code := common.ErrorCode(err)
		msg := err.Error()
		run.ErrorMessage = &msg
		run.Status = string(constants.RunStatusFailed)
		if code != "" {
			run.ErrorCode = &code
			if isRejection(code) {
				run.Status = string(constants.RunStatusRejected)
			}
		}
		return run
	}

	flag := res.Report.OverallFlag
	run.OverallFlag = &flag
	run.Status = string(constants.RunStatusMismatched)
	if flag {
		run.Status = string(constants.RunStatusMatched)
	}
	if b, mErr := json.Marshal(res.Report); mErr == nil {
		run.Report = b
	}
	return run
}

func sourceLabel(src *extract.TextExtractionResult) string {
	if src == nil || src.Path == "" {
		return inlineSource
	}
	return src.Path
}

func isRejection(code string) bool {
	switch code {
	case common.CodeInvalidDocumentTypes, common.CodeUnknownDocumentTypes,
		common.CodeMixedDocumentTypes, common.CodeMissingDocuments:
		return true
	}
	return false
}
