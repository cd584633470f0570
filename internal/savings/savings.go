// Package savings computes the estimated annual saving per product from a
// subject's answers. Estimates are advisory figures shown alongside the
// eligibility scores; they are pure functions of the answer set and carry no
// artificial upper bound.
package savings

import (
	"math"

	"github.com/Alexandre220990/ProfitumMVP-sub006/internal/eligibility"
)

// Kind distinguishes products with a monetary estimate from purely
// qualitative ones.
type Kind string

const (
	KindFinancial   Kind = "financial"
	KindQualitative Kind = "qualitative"
)

// Estimate is the computed outcome for one product.
type Estimate struct {
	ProductID    string   `json:"productId"`
	Name         string   `json:"name"`
	Kind         Kind     `json:"kind"`
	Eligible     bool     `json:"eligible"`
	AnnualSaving float64  `json:"annualSaving"`
	Formula      string   `json:"formula"`
	Benefits     []string `json:"benefits,omitempty"`
}

// Question ids of the simulation questionnaire.
const (
	qSector          = "secteur"
	qRevenueBand     = "ca_tranche"
	qEmployeeBand    = "nb_employes_tranche"
	qOwnsPremises    = "proprietaire_locaux"
	qEnergyContracts = "contrats_energie"
	qOwnsVehicles    = "possede_vehicules"
	qVehicleTypes    = "types_vehicules"
	qUnpaidLevel     = "niveau_impayes"
	qResearchSpend   = "depenses_rd"
	qResearchBand    = "montant_rd_tranche"
	qFuelLitres      = "litres_carburant_mois"
	qDriverCount     = "nb_chauffeurs"
	qPropertyTax     = "montant_taxe_fonciere"
	qEnergyBills     = "montant_factures_energie_mois"
	qExportBand      = "export_annuel"
)

// Band midpoints used when the questionnaire only captures a range.
var (
	employeeBands = map[string]float64{
		"Aucun":      0,
		"1 à 5":      3,
		"6 à 20":     13,
		"21 à 50":    35,
		"Plus de 50": 75,
	}
	revenueBands = map[string]float64{
		"Moins de 100 000€":       50000,
		"100 000€ - 500 000€":     300000,
		"500 000€ - 1 000 000€":   750000,
		"1 000 000€ - 5 000 000€": 2500000,
		"Plus de 5 000 000€":      7000000,
	}
	researchBands = map[string]float64{
		"Moins de 50 000€":    25000,
		"50 000€ - 100 000€":  75000,
		"100 000€ - 500 000€": 300000,
		"Plus de 500 000€":    750000,
	}
	unpaidBands = map[string]float64{
		"Oui, montant faible (< 10 000€)":         5000,
		"Oui, montant modéré (10 000€ - 50 000€)": 30000,
		"Oui, montant important (> 50 000€)":      75000,
		"Non":                                     0,
	}
	exportBands = map[string]float64{
		"Non":                             0,
		"Oui, < 50 000€":                  25000,
		"Oui, Entre 50 000€ et 100 000€":  75000,
		"Oui, Entre 100 000€ et 500 000€": 300000,
		"Oui, + de 500 000€":              750000,
	}
)

// EstimateAll computes the estimate for every product, in catalog order.
func EstimateAll(answers eligibility.AnswerSet) []Estimate {
	return []Estimate{
		estimateTICPE(answers),
		estimateURSSAF(answers),
		estimateDFS(answers),
		estimateFoncier(answers),
		estimateCEE(answers),
		estimateMSA(answers),
		estimateEnergie(answers),
		estimateRecouvrement(answers),
		estimateTVA(answers),
		estimateChronotachygraphes(answers),
	}
}

// estimateTICPE refunds 0.20 euro per litre of eligible fuel.
func estimateTICPE(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "TICPE",
		Name:      "Remboursement TICPE",
		Kind:      KindFinancial,
		Formula:   "litres/mois × 12 × 0,20€",
	}
	eligibleSectors := []string{
		"Transport routier de marchandises",
		"Transport routier de voyageurs",
		"Taxi / VTC",
		"BTP / Travaux publics",
		"Terrassement",
		"Secteur Agricole",
	}
	eligibleVehicles := []string{
		"Camions de plus de 7,5 tonnes",
		"Engins de chantier",
		"Tracteurs agricoles",
	}
	litres := number(answers, qFuelLitres)
	if !contains(eligibleSectors, text(answers, qSector)) ||
		text(answers, qOwnsVehicles) != "Oui" ||
		!containsAny(list(answers, qVehicleTypes), eligibleVehicles) ||
		litres <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(litres * 12 * 0.20)
	return est
}

// estimateURSSAF takes 10% of the payroll derived from the employee band.
func estimateURSSAF(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "URSSAF",
		Name:      "Réduction URSSAF",
		Kind:      KindFinancial,
		Formula:   "nb_employés × 35 000€ × 10%",
	}
	employees := employeeBands[text(answers, qEmployeeBand)]
	if employees <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(employees * 35000 * 0.10)
	return est
}

// estimateDFS deducts a flat 150 euro per driver in transport sectors.
func estimateDFS(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "DFS",
		Name:      "Déduction Forfaitaire Spécifique",
		Kind:      KindFinancial,
		Formula:   "nb_chauffeurs × 150€",
	}
	eligibleSectors := []string{
		"Transport routier de marchandises",
		"Transport routier de voyageurs",
		"Taxi / VTC",
	}
	drivers := number(answers, qDriverCount)
	if !contains(eligibleSectors, text(answers, qSector)) || drivers <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(drivers * 150)
	return est
}

// estimateFoncier recovers 20% of the yearly property tax for owners.
func estimateFoncier(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "FONCIER",
		Name:      "Optimisation Foncier Entreprise",
		Kind:      KindFinancial,
		Formula:   "taxe_foncière × 20%",
	}
	tax := number(answers, qPropertyTax)
	if text(answers, qOwnsPremises) != "Oui" || tax <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(tax * 0.20)
	return est
}

// estimateCEE grants 30% of the research spend band midpoint.
func estimateCEE(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "CEE",
		Name:      "Certificats Économie Énergie",
		Kind:      KindFinancial,
		Formula:   "montant_RD × 30%",
	}
	spend := text(answers, qResearchSpend)
	amount := researchBands[text(answers, qResearchBand)]
	if (spend != "Oui, régulièrement" && spend != "Oui, occasionnellement") || amount <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(amount * 0.30)
	return est
}

// estimateMSA reduces agricultural contributions by 6.5% of revenue.
func estimateMSA(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "MSA",
		Name:      "Réduction MSA",
		Kind:      KindFinancial,
		Formula:   "CA × 6,5%",
	}
	revenue := revenueBands[text(answers, qRevenueBand)]
	if text(answers, qSector) != "Secteur Agricole" || revenue <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(revenue * 0.065)
	return est
}

// estimateEnergie recovers 30% of the yearly energy bills.
func estimateEnergie(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "ENERGIE",
		Name:      "Optimisation Énergie",
		Kind:      KindFinancial,
		Formula:   "factures/mois × 12 × 30%",
	}
	bills := number(answers, qEnergyBills)
	if text(answers, qEnergyContracts) != "Oui" || bills <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(bills * 12 * 0.30)
	return est
}

// estimateRecouvrement treats unpaid invoices as fully recoverable.
func estimateRecouvrement(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "RECOUVREMENT",
		Name:      "Recouvrement Créances",
		Kind:      KindFinancial,
		Formula:   "impayés × 100%",
	}
	unpaid := unpaidBands[text(answers, qUnpaidLevel)]
	if unpaid <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(unpaid)
	return est
}

// estimateTVA refunds 20% of the export band midpoint.
func estimateTVA(answers eligibility.AnswerSet) Estimate {
	est := Estimate{
		ProductID: "TVA",
		Name:      "Remboursement Crédit TVA",
		Kind:      KindFinancial,
		Formula:   "export × 20%",
	}
	export := exportBands[text(answers, qExportBand)]
	if export <= 0 {
		return est
	}
	est.Eligible = true
	est.AnnualSaving = math.Round(export * 0.20)
	return est
}

// estimateChronotachygraphes is qualitative: compliance and time benefits,
// no monetary figure.
func estimateChronotachygraphes(answers eligibility.AnswerSet) Estimate {
	eligibleSectors := []string{
		"Transport routier de marchandises",
		"Transport routier de voyageurs",
	}
	eligibleVehicles := []string{
		"Camions de plus de 7,5 tonnes",
		"Camions de 3,5 à 7,5 tonnes",
	}
	est := Estimate{
		ProductID: "CHRONOTACHYGRAPHES",
		Name:      "Chronotachygraphes Digitaux",
		Kind:      KindQualitative,
		Formula:   "bénéfices qualitatifs",
	}
	if contains(eligibleSectors, text(answers, qSector)) &&
		containsAny(list(answers, qVehicleTypes), eligibleVehicles) {
		est.Eligible = true
		est.Benefits = []string{
			"10 à 15 heures de gestion administrative gagnées par mois",
			"Données de conduite fiables et traçables",
			"Conformité réglementaire garantie",
			"Moins de litiges lors des contrôles routiers",
		}
	}
	return est
}

func text(answers eligibility.AnswerSet, questionID string) string {
	answer, ok := answers[questionID]
	if !ok {
		return ""
	}
	s, _ := answer.Value.(string)
	return s
}

func number(answers eligibility.AnswerSet, questionID string) float64 {
	answer, ok := answers[questionID]
	if !ok {
		return 0
	}
	switch v := answer.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func list(answers eligibility.AnswerSet, questionID string) []string {
	answer, ok := answers[questionID]
	if !ok {
		return nil
	}
	switch v := answer.Value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func containsAny(values, targets []string) bool {
	for _, v := range values {
		if contains(targets, v) {
			return true
		}
	}
	return false
}
