package parser

// DefaultExpenseCategory and DefaultIncomeCategory are used when no keyword
// matches.
const (
	DefaultExpenseCategory = "Outros"
	DefaultIncomeCategory  = "Receita"
)

// categoryKeywords maps folded keywords to display categories.
var categoryKeywords = map[string]string{
	"mercado":      "Mercado",
	"supermercado": "Mercado",
	"feira":        "Mercado",
	"padaria":      "Alimentação",
	"ifood":        "Alimentação",
	"restaurante":  "Alimentação",
	"lanche":       "Alimentação",
	"almoco":       "Alimentação",
	"jantar":       "Alimentação",
	"pizza":        "Alimentação",
	"mcdonalds":    "Alimentação",
	"uber":         "Transporte",
	"taxi":         "Transporte",
	"onibus":       "Transporte",
	"metro":        "Transporte",
	"gasolina":     "Transporte",
	"combustivel":  "Transporte",
	"luz":          "Luz",
	"energia":      "Energia",
	"internet":     "Internet",
	"telefone":     "Telefone",
	"celular":      "Celular",
	"aluguel":      "Aluguel",
	"condominio":   "Condomínio",
	"agua":         "Água",
	"gas":          "Gás",
	"academia":     "Academia",
	"netflix":      "Streaming",
	"spotify":      "Streaming",
	"streaming":    "Streaming",
	"assinatura":   "Assinatura",
	"farmacia":     "Saúde",
	"remedio":      "Saúde",
	"medico":       "Saúde",
	"plano":        "Plano de Saúde",
	"tv":           "Eletrônicos",
	"notebook":     "Eletrônicos",
	"computador":   "Eletrônicos",
	"fone":         "Eletrônicos",
	"roupa":        "Vestuário",
	"tenis":        "Vestuário",
	"cinema":       "Lazer",
	"bar":          "Lazer",
	"viagem":       "Viagem",
	"salario":      "Salário",
	"freela":       "Freelance",
	"freelance":    "Freelance",
	"pix":          "Transferência",
	"dividendos":   "Investimentos",
}

// Categorize returns the category for the first known keyword in tokens.
func Categorize(tokens []string, fallback string) string {
	for _, t := range tokens {
		if c, ok := categoryKeywords[t]; ok {
			return c
		}
	}
	return fallback
}
