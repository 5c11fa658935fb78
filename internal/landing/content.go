// Package landing holds the marketing copy of the DroneVision landing page
// and the selection of the active industry sector and hero anomaly.
package landing

// Brand is the company name, rendered as Name followed by Suffix.
type Brand struct {
	Name    string
	Suffix  string
	Tagline string
}

// Metric is a headline figure shown under the hero.
type Metric struct {
	Label string
	Value string
	Sub   string
}

// Industry is one selectable sector of the expertise section.
type Industry struct {
	ID       string
	Label    string
	Accent   string // css modifier: yellow, blue or emerald
	Title    string
	Desc     string
	Features []string
}

// Anomaly is a detection highlighted on the hero camera frame. X and Y
// are percentages of the frame.
type Anomaly struct {
	ID             int
	X              float64
	Y              float64
	Type           string
	Title          string
	Confidence     string
	Grade          string
	Severity       string // critical or warning
	Recommendation string
}

// Feature is a product capability card.
type Feature struct {
	Title string
	Desc  string
}

// Stat is a figure from the problem section.
type Stat struct {
	Value string
	Label string
	Sub   string
}

var brand = Brand{
	Name:    "DRONE",
	Suffix:  "VISION",
	Tagline: "Intelligence Aérienne Autonome",
}

var partners = []string{
	"STEG", "Tunisie Telecom", "SNCFT", "TotalEnergies",
	"General Electric", "Siemens", "Airbus", "Ooredoo",
}

var metrics = []Metric{
	{Label: "Inspection", Value: "4x", Sub: "Plus Rapide"},
	{Label: "Précision IA", Value: "99.8%", Sub: "Taux de Détection"},
	{Label: "Économies", Value: "-60%", Sub: "Opérationnelles"},
}

var industries = []Industry{
	{
		ID:       "energy",
		Label:    "Énergie & Utilities",
		Accent:   "yellow",
		Title:    "Inspection Thermographique & Structurelle",
		Desc:     "Automatisez l'inspection des lignes haute tension et des parcs solaires. Détection précoce des points chauds et micro-fissures invisibles à l'œil nu.",
		Features: []string{"Thermographie Infrarouge", "Modélisation LiDAR", "Rapports ISO 9001"},
	},
	{
		ID:       "telecom",
		Label:    "Télécoms",
		Accent:   "blue",
		Title:    "Audit d'Actifs Verticaux",
		Desc:     "Jumeaux numériques de pylônes pour valider l'inventaire, l'alignement des antennes et la corrosion structurelle sans risque d'ascension.",
		Features: []string{"Inventaire Automatisé", "Calcul d'Azimut", "Analyse de Rouille"},
	},
	{
		ID:       "transport",
		Label:    "Infrastructures",
		Accent:   "emerald",
		Title:    "Génie Civil & Ouvrages d'Art",
		Desc:     "Surveillance millimétrique des ponts, viaducs et voies ferrées. Détection des mouvements de terrain et fissures béton évolutives.",
		Features: []string{"Photogrammétrie HD", "Comparaison Temporelle", "Détection Fissures >0.1mm"},
	},
}

var anomalies = []Anomaly{
	{ID: 0, X: 68, Y: 35, Type: "CRITIQUE", Title: "Corrosion Sévère", Confidence: "98.4%", Grade: "Grade A", Severity: "critical", Recommendation: "Intervention immédiate requise."},
	{ID: 1, X: 45, Y: 62, Type: "WARNING", Title: "Boulon Manquant", Confidence: "87.2%", Grade: "Grade B", Severity: "warning", Recommendation: "Planifier inspection visuelle."},
}

var features = []Feature{
	{Title: "Deep Learning Embarqué", Desc: "Traitement des images en temps réel directement sur le drone (Edge AI). Détection instantanée des anomalies sans latence cloud."},
	{Title: "Jumeaux Numériques", Desc: "Reconstruction 3D photogrammétrique pour créer une réplique virtuelle exacte de vos infrastructures consultable sur navigateur."},
	{Title: "Analyses Temporelles", Desc: "Comparaison automatique des inspections successives (4D) pour suivre l'évolution précise d'une fissure ou de la rouille dans le temps."},
}

var stats = []Stat{
	{Value: "$1.2T", Label: "PERTES ANNUELLES", Sub: "Défaillances infra."},
	{Value: "1000+", Label: "ACCIDENTS/AN", Sub: "Chutes & risques."},
	{Value: "46-S", Label: "DÉLAIS RAPPORTS", Sub: "Semaines vs Heures."},
	{Value: "30%", Label: "DONNÉES PERDUES", Sub: "Erreur humaine."},
}
