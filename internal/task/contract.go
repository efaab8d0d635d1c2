package task

import (
	"context"
	"strings"

	"docvision/internal/domain"
	"docvision/internal/parser"
	"docvision/internal/port"
	"docvision/internal/validator/crossfield"
)

// ContractHandler extracts parties, dates, clauses, obligations and key terms.
type ContractHandler struct{ base }

func NewContractHandler(backend port.GenerationBackend) *ContractHandler {
	return &ContractHandler{base{backend: backend}}
}

func (h *ContractHandler) Kind() domain.TaskKind { return domain.TaskContract }

func (h *ContractHandler) SystemPrompt() string {
	return "You are an assistant specialized in contract analysis. " +
		"Extract the parties, dates, terms, clauses, obligations and important provisions of contracts."
}

func (h *ContractHandler) UserPrompt(opts domain.TaskOptions) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	var sb strings.Builder
	sb.WriteString("Analyze this contract and extract:\n\n")
	sb.WriteString("- Parties: every party with its role\n")
	sb.WriteString("- Dates: effective date, termination date and other key dates\n")
	if !opts.SkipClauses {
		sb.WriteString("- Clauses: key clauses with their titles and summaries\n")
	}
	if !opts.SkipObligations {
		sb.WriteString("- Obligations: what each party must do\n")
	}
	sb.WriteString("- Key terms: payment, duration, termination conditions and similar\n\n")
	sb.WriteString("Return JSON:\n```json\n{\n" +
		`  "parties": [{"name": "Party Name", "role": "Buyer/Seller/Service Provider/Client", "address": "Address if present", "representative": "Signing person"}],` + "\n" +
		`  "dates": {"effective_date": "2024-01-15", "termination_date": "2025-01-15", "signing_date": "2024-01-10"},` + "\n")
	if !opts.SkipClauses {
		sb.WriteString(`  "clauses": [{"number": "1", "title": "Clause Title", "summary": "Brief summary", "type": "standard|custom|boilerplate"}],` + "\n")
	}
	if !opts.SkipObligations {
		sb.WriteString(`  "obligations": [{"party": "Party name", "obligation": "What they must do", "deadline": "Date or condition", "consequence": "What happens if not fulfilled"}],` + "\n")
	}
	sb.WriteString(`  "key_terms": {"contract_value": "Total value", "payment_terms": "Payment schedule", "duration": "Contract duration", "termination_clause": "How to terminate", "governing_law": "Jurisdiction", "dispute_resolution": "Arbitration/Court"}` + "\n}\n```")
	return sb.String()
}

func (h *ContractHandler) Process(ctx context.Context, image port.ImageRef, opts domain.TaskOptions) (*domain.Record, error) {
	raw, err := h.generate(ctx, h, image, opts)
	if err != nil {
		return nil, err
	}

	obj := parser.ParseObject(raw)
	if obj == nil {
		obj = map[string]any{}
	}

	data := domain.ContractData{
		Parties:  []domain.Party{},
		Dates:    asMap(obj["dates"]),
		KeyTerms: asMap(obj["key_terms"]),
	}
	for _, e := range asMapList(obj["parties"]) {
		data.Parties = append(data.Parties, domain.Party{
			Name:           asString(e["name"]),
			Role:           asString(e["role"]),
			Address:        asString(e["address"]),
			Representative: asString(e["representative"]),
		})
	}
	if !opts.SkipClauses {
		for _, e := range asMapList(obj["clauses"]) {
			data.Clauses = append(data.Clauses, domain.Clause{
				Number:  asString(e["number"]),
				Title:   asString(e["title"]),
				Summary: asString(e["summary"]),
				Type:    asString(e["type"]),
			})
		}
	}
	if !opts.SkipObligations {
		for _, e := range asMapList(obj["obligations"]) {
			data.Obligations = append(data.Obligations, domain.Obligation{
				Party:       asString(e["party"]),
				Obligation:  asString(e["obligation"]),
				Deadline:    asString(e["deadline"]),
				Consequence: asString(e["consequence"]),
			})
		}
	}
	if errs := crossfield.ValidateDates(data.Dates, nil); len(errs) > 0 {
		data.DateErrors = errs
	}

	return &domain.Record{
		Kind: domain.TaskContract,
		Text: raw,
		Data: data,
		Metadata: map[string]any{
			"party_count":      len(data.Parties),
			"clause_count":     len(data.Clauses),
			"obligation_count": len(data.Obligations),
			"dates_valid":      len(data.DateErrors) == 0,
		},
	}, nil
}
