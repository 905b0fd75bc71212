package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/kanban"
	"github.com/bebel/pendencias/internal/usecase/board"
)

const maxDescricao = 60

// render prints the board column by column
func render(w io.Writer, snap board.Snapshot, now time.Time) {
	if snap.Degraded {
		fmt.Fprintln(w, "⚠️  Sem conexão com o servidor: exibindo dados de exemplo")
	}
	fmt.Fprintf(w, "Pendências: %d", snap.Total)
	if !snap.RefreshedAt.IsZero() {
		fmt.Fprintf(w, " (atualizado %s)", snap.RefreshedAt.Format("15:04:05"))
	}
	fmt.Fprintln(w)

	for _, col := range snap.Columns {
		fmt.Fprintf(w, "\n== %s (%d) ==\n", col.Title, len(col.Cards))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, card := range col.Cards {
			overdue := ""
			if card.IsOverdue(now) && col.Column != entities.ColumnDone {
				overdue = "⏰ atrasada"
			}
			responsavel := "-"
			if card.Responsavel != nil {
				responsavel = card.Responsavel.NomeCompleto
			}
			fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				card.ID,
				kanban.PriorityLabel(card.Prioridade),
				kanban.TipoLabel(card.Tipo),
				card.PessoaNome(),
				responsavel,
				truncate(card.DescricaoOrEmpty(), maxDescricao),
				overdue,
			)
		}
		tw.Flush()
	}
}

func renderNotice(w io.Writer, n *board.Notice) {
	line := "❌ " + n.String()
	if n.Retryable() {
		line += " (tente novamente)"
	}
	fmt.Fprintln(w, line)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
