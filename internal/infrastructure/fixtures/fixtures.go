// Package fixtures holds the local sample dataset shown when the record
// store cannot be reached.
package fixtures

import (
	"sort"
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/kanban"
)

// Dataset is a self-contained set of people, conversations, professionals
// and pendências. Registros holds the stored pendência rows; Pendencias
// returns them joined for the board.
type Dataset struct {
	Pessoas       []entities.Pessoa
	Conversas     []entities.Conversa
	Profissionais []entities.Profissional
	Registros     []entities.Pendencia
	IntentLabels  []entities.IntentLabel
}

// Sample returns a fresh copy of the built-in dataset
func Sample() *Dataset {
	return &Dataset{
		Pessoas: []entities.Pessoa{
			{ID: 1, Status: entities.PessoaPaciente, NomeCompleto: str("Maria Silva Santos"), DataNascimento: str("1985-03-15"), CPF: str("123.456.789-01"), Origem: str("WHATSAPP"), Stage: entities.StageConverted, LeadScore: 85, ConsentMarketing: true},
			{ID: 2, Status: entities.PessoaLead, NomeCompleto: str("João Pedro Oliveira"), DataNascimento: str("1990-07-22"), Origem: str("WHATSAPP"), Stage: entities.StageQualified, LeadScore: 65},
			{ID: 3, Status: entities.PessoaPaciente, NomeCompleto: str("Ana Carolina Ferreira"), DataNascimento: str("1978-11-08"), CPF: str("987.654.321-09"), Origem: str("TELEFONE"), Stage: entities.StageConverted, LeadScore: 90, ConsentMarketing: true},
			{ID: 4, Status: entities.PessoaLead, Origem: str("WHATSAPP"), Stage: entities.StageNew, LeadScore: 30},
		},
		Conversas: []entities.Conversa{
			{ID: 1, IDPessoa: 1, Canal: entities.CanalWhatsApp, Status: entities.ConversaOpen, StartedAt: at("2024-01-15T09:30:00Z"), LastMessageAt: ptr(at("2024-01-15T14:22:00Z")), Topic: str("Agendamento de consulta"), ResumoConversa: str("Paciente solicita agendamento para consulta de rotina. Mencionou dores nas costas.")},
			{ID: 2, IDPessoa: 2, Canal: entities.CanalWhatsApp, Status: entities.ConversaOpen, StartedAt: at("2024-01-14T16:45:00Z"), LastMessageAt: ptr(at("2024-01-15T10:15:00Z")), Topic: str("Dúvidas sobre tratamento"), ResumoConversa: str("Lead interessado em tratamento ortodôntico. Solicitou orçamento.")},
			{ID: 3, IDPessoa: 3, Canal: entities.CanalTelefone, Status: entities.ConversaClosed, StartedAt: at("2024-01-13T11:20:00Z"), EndedAt: ptr(at("2024-01-13T11:35:00Z")), LastMessageAt: ptr(at("2024-01-13T11:35:00Z")), Topic: str("Confirmação de pagamento"), ResumoConversa: str("Paciente confirmou pagamento da consulta anterior.")},
			{ID: 4, IDPessoa: 4, Canal: entities.CanalWhatsApp, Status: entities.ConversaOpen, StartedAt: at("2024-01-15T13:10:00Z"), LastMessageAt: ptr(at("2024-01-15T13:45:00Z")), ResumoConversa: str("Contato inicial. Pessoa interessada em informações sobre a clínica.")},
		},
		Profissionais: []entities.Profissional{
			{ID: 1, NomeCompleto: "Dra. Helena Costa", Especialidade: str("Clínica Geral"), Ativo: true, FgPadraoPendencia: true},
			{ID: 2, NomeCompleto: "Dr. Rafael Mendes", Especialidade: str("Ortodontia"), Ativo: true},
			{ID: 3, NomeCompleto: "Dra. Beatriz Lopes", Especialidade: str("Financeiro"), Ativo: false},
		},
		Registros: []entities.Pendencia{
			{ID: 1, IDConversa: 1, IDMensagemOrigem: i64(1), Tipo: entities.TipoAgendar, Descricao: str("Agendar consulta de rotina para Maria Silva - mencionou dores nas costas"), Prioridade: 3, SLAAt: ptr(at("2024-01-16T17:00:00Z")), Status: entities.StatusFlagged, DetectedAt: at("2024-01-15T14:22:00Z")},
			{ID: 2, IDConversa: 2, IDMensagemOrigem: i64(2), Tipo: entities.TipoOrcamento, Descricao: str("Enviar orçamento para tratamento ortodôntico - João Pedro Oliveira"), Prioridade: 4, SLAAt: ptr(at("2024-01-17T12:00:00Z")), Status: entities.StatusFlagged, DetectedAt: at("2024-01-15T10:15:00Z")},
			{ID: 3, IDConversa: 1, IDMensagemOrigem: i64(3), Tipo: entities.TipoPagamento, Descricao: str("Verificar status do pagamento da consulta anterior - Maria Silva"), Prioridade: 2, SLAAt: ptr(at("2024-01-15T18:00:00Z")), Status: entities.StatusFlagged, DetectedAt: at("2024-01-15T11:30:00Z")},
			{ID: 4, IDConversa: 4, IDMensagemOrigem: i64(4), Tipo: entities.TipoInformacao, Descricao: str("Enviar informações sobre serviços da clínica para novo contato"), Prioridade: 1, SLAAt: ptr(at("2024-01-16T09:00:00Z")), Status: entities.StatusFlagged, DetectedAt: at("2024-01-15T13:45:00Z")},
			{ID: 5, IDConversa: 3, IDMensagemOrigem: i64(5), Tipo: entities.TipoPagamento, Descricao: str("Pagamento confirmado - Ana Carolina Ferreira"), Prioridade: 1, Status: entities.StatusResolved, DetectedAt: at("2024-01-13T11:35:00Z"), ResolvedAt: ptr(at("2024-01-13T11:40:00Z")), ResolutionNote: str("Pagamento confirmado pelo sistema")},
		},
		IntentLabels: []entities.IntentLabel{
			{IntentCode: entities.TipoAgendar, Description: str("Solicitação de agendamento de consulta"), Active: true, GeneratePendencia: true, GeneratePendenciaInstructions: str("Verificar disponibilidade e agendar consulta")},
			{IntentCode: entities.TipoPagamento, Description: str("Questões relacionadas a pagamento"), Active: true, GeneratePendencia: true, GeneratePendenciaInstructions: str("Verificar status do pagamento e orientar")},
			{IntentCode: entities.TipoOrcamento, Description: str("Solicitação de orçamento"), Active: true, GeneratePendencia: true, GeneratePendenciaInstructions: str("Preparar e enviar orçamento detalhado")},
			{IntentCode: entities.TipoCancelamento, Description: str("Solicitação de cancelamento"), Active: true, GeneratePendencia: true, GeneratePendenciaInstructions: str("Processar cancelamento conforme política")},
			{IntentCode: entities.TipoInformacao, Description: str("Solicitação de informações gerais"), Active: true},
		},
	}
}

// Pendencias joins every pendência with its conversation and person, newest
// detection first. Missing relations become placeholders.
func (d *Dataset) Pendencias() []*entities.PendenciaWithDetails {
	conversas := make(map[int64]entities.Conversa, len(d.Conversas))
	for _, c := range d.Conversas {
		conversas[c.ID] = c
	}
	pessoas := make(map[int64]entities.Pessoa, len(d.Pessoas))
	for _, p := range d.Pessoas {
		pessoas[p.ID] = p
	}

	out := make([]*entities.PendenciaWithDetails, 0, len(d.Registros))
	for _, p := range d.Registros {
		rec := &entities.PendenciaWithDetails{Pendencia: p}
		kanban.Decorate(rec)

		c, ok := conversas[p.IDConversa]
		if !ok {
			rec.Pessoa = entities.PlaceholderPessoa()
			rec.Conversa = entities.PlaceholderConversa(p.IDConversa, 0, p.DetectedAt)
		} else {
			rec.Conversa = &c
			if pe, ok := pessoas[c.IDPessoa]; ok && pe.NomeCompleto != nil {
				rec.Pessoa = &pe
			} else {
				rec.Pessoa = entities.PlaceholderPessoa()
				rec.Pessoa.ID = c.IDPessoa
			}
		}
		out = append(out, rec.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

// IntentLabel looks up the label for an intent code
func (d *Dataset) IntentLabel(code string) (entities.IntentLabel, bool) {
	for _, l := range d.IntentLabels {
		if l.IntentCode == code {
			return l, true
		}
	}
	return entities.IntentLabel{}, false
}

func str(s string) *string { return &s }
func i64(v int64) *int64   { return &v }
func ptr[T any](v T) *T    { return &v }

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
