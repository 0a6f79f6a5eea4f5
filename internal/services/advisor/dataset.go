package advisor

import (
	"fmt"

	"crop-advisory-engine/internal/models"
)

// CropAdvisory holds the static guidance for one (crop type, stage) pair.
// Texts are canonical English; display-language resolution happens at the
// presentation boundary.
type CropAdvisory struct {
	Fertilizer string
	PestAlert  string
	Irrigation string
	Tips       []string
}

// WaterRetention classifies how well a soil holds moisture.
type WaterRetention string

const (
	RetentionLow    WaterRetention = "low"
	RetentionMedium WaterRetention = "medium"
	RetentionHigh   WaterRetention = "high"
)

// SoilProfile holds the static reference data for one soil type.
type SoilProfile struct {
	Retention WaterRetention
	Drainage  string
	Fertility string
	Tips      []string
}

// cropAdvisoryTable is keyed by crop type then growth stage. One entry must
// exist for every pair; ValidateDatasets enforces this at load time.
var cropAdvisoryTable = map[models.CropType]map[GrowthStage]CropAdvisory{
	models.CropTypeRice: {
		StageSowing: {
			Fertilizer: "Apply basal dose of DAP and potash before transplanting.",
			PestAlert:  "Watch nursery beds for rice thrips and seedling blight.",
			Irrigation: "Keep nursery beds saturated; maintain 2-3 cm standing water.",
			Tips:       []string{"Treat seeds with fungicide before sowing", "Transplant 20-25 day old seedlings"},
		},
		StageVegetative: {
			Fertilizer: "Top-dress urea in two splits during tillering.",
			PestAlert:  "Scout for stem borer dead hearts and leaf folder damage.",
			Irrigation: "Maintain 5 cm standing water through active tillering.",
			Tips:       []string{"Remove weeds at 20 and 40 days after transplanting"},
		},
		StageFlowering: {
			Fertilizer: "Apply final urea split at panicle initiation.",
			PestAlert:  "High risk of brown planthopper and neck blast; inspect tiller bases.",
			Irrigation: "Do not let the field dry out; water stress now cuts grain set.",
			Tips:       []string{"Avoid spraying during anthesis hours"},
		},
		StageMaturity: {
			Fertilizer: "Stop fertilizer application; late nitrogen delays ripening.",
			PestAlert:  "Check grain heads for ear-cutting caterpillar and rice bug.",
			Irrigation: "Drain the field 10-15 days before expected harvest.",
			Tips:       []string{"Harvest at 80% golden panicles for best milling"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Dry and store grain promptly to prevent storage insect buildup.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Dry grain to 14% moisture before bagging"},
		},
	},
	models.CropTypeWheat: {
		StageSowing: {
			Fertilizer: "Apply full phosphorus and half nitrogen as basal dose.",
			PestAlert:  "Protect seed with insecticide treatment against termites.",
			Irrigation: "Give a light pre-sowing irrigation for uniform germination.",
			Tips:       []string{"Sow at 5 cm depth in rows 20 cm apart"},
		},
		StageVegetative: {
			Fertilizer: "Top-dress remaining nitrogen at crown root initiation.",
			PestAlert:  "Scout for aphid colonies on young leaves.",
			Irrigation: "Irrigate at crown root initiation, the most critical stage.",
			Tips:       []string{"First irrigation 20-25 days after sowing"},
		},
		StageFlowering: {
			Fertilizer: "Foliar urea spray can support grain filling on poor stands.",
			PestAlert:  "Yellow rust spreads fast in cool humid spells; inspect weekly.",
			Irrigation: "Irrigate at flowering and again at milk stage.",
			Tips:       []string{"Avoid lodging by not over-irrigating on windy days"},
		},
		StageMaturity: {
			Fertilizer: "No further fertilizer needed.",
			PestAlert:  "Watch for grain aphids on ear heads.",
			Irrigation: "Light irrigation at dough stage if soil is visibly dry.",
			Tips:       []string{"Stop irrigation 10 days before harvest"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Fumigate storage before loading the new harvest.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Harvest when grains are hard and straw turns brittle"},
		},
	},
	models.CropTypeMaize: {
		StageSowing: {
			Fertilizer: "Apply basal NPK with emphasis on phosphorus for root growth.",
			PestAlert:  "Protect seedlings from shoot fly with seed treatment.",
			Irrigation: "Keep the seed zone moist until emergence.",
			Tips:       []string{"Maintain plant spacing of 60x20 cm"},
		},
		StageVegetative: {
			Fertilizer: "Side-dress nitrogen at knee-high stage.",
			PestAlert:  "Fall armyworm feeds in the whorl; check for ragged leaf holes.",
			Irrigation: "Irrigate every 7-10 days depending on soil moisture.",
			Tips:       []string{"Earth-up rows to support stems"},
		},
		StageFlowering: {
			Fertilizer: "Apply final nitrogen dose at tasseling.",
			PestAlert:  "Cob borer pressure peaks now; inspect silks closely.",
			Irrigation: "Water stress at tasseling-silking is the costliest; never skip.",
			Tips:       []string{"Irrigate in the evening during hot spells"},
		},
		StageMaturity: {
			Fertilizer: "No further fertilizer needed.",
			PestAlert:  "Check cobs for grain mold in humid weather.",
			Irrigation: "Reduce irrigation as kernels dent.",
			Tips:       []string{"Harvest at black-layer formation"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Dry cobs well; weevils thrive in moist stored grain.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Shell and dry grain to 13% moisture"},
		},
	},
	models.CropTypeCotton: {
		StageSowing: {
			Fertilizer: "Apply basal dose of DAP; avoid early excess nitrogen.",
			PestAlert:  "Seedling pests: aphids and jassids on first true leaves.",
			Irrigation: "Light irrigation after sowing aids uniform emergence.",
			Tips:       []string{"Use acid-delinted certified seed"},
		},
		StageVegetative: {
			Fertilizer: "Split nitrogen at squaring; add magnesium on light soils.",
			PestAlert:  "Whitefly and jassid buildup; monitor with yellow sticky traps.",
			Irrigation: "Irrigate at 3-week intervals; avoid waterlogging.",
			Tips:       []string{"Install pheromone traps early"},
		},
		StageFlowering: {
			Fertilizer: "Apply potash to support boll development.",
			PestAlert:  "Bollworm eggs on squares and young bolls; act at threshold.",
			Irrigation: "Moisture stress during boll set drops squares; irrigate on schedule.",
			Tips:       []string{"Avoid broad-spectrum sprays that kill natural enemies"},
		},
		StageMaturity: {
			Fertilizer: "Stop nitrogen to encourage boll opening.",
			PestAlert:  "Pink bollworm in ripening bolls; destroy affected ones.",
			Irrigation: "Taper off irrigation as bolls open.",
			Tips:       []string{"Pick in dry weather for clean lint"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Remove and destroy crop residue to break pest cycles.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Store seed cotton away from moisture"},
		},
	},
	models.CropTypeSugarcane: {
		StageSowing: {
			Fertilizer: "Apply basal FYM and phosphorus in furrows.",
			PestAlert:  "Treat setts against termites and early shoot borer.",
			Irrigation: "Irrigate immediately after planting, then weekly until sprouting.",
			Tips:       []string{"Plant three-budded setts end to end"},
		},
		StageVegetative: {
			Fertilizer: "Heavy nitrogen feeder: apply urea in three splits by month five.",
			PestAlert:  "Early shoot borer causes dead hearts; remove affected shoots.",
			Irrigation: "Irrigate every 7-12 days; the formative phase decides tonnage.",
			Tips:       []string{"Earth-up at 3 and 5 months", "Detrash lower leaves"},
		},
		StageFlowering: {
			Fertilizer: "No nitrogen after the grand growth phase ends.",
			PestAlert:  "Scale insects on internodes under the leaf sheath.",
			Irrigation: "Maintain soil moisture; arrowing cane still builds sugar.",
			Tips:       []string{"Tie canes to prevent lodging in wind"},
		},
		StageMaturity: {
			Fertilizer: "Withhold all fertilizer during ripening.",
			PestAlert:  "Rodent damage rises in lodged cane; keep field borders clean.",
			Irrigation: "Withhold water 3-4 weeks before harvest to concentrate sucrose.",
			Tips:       []string{"Check brix before fixing harvest date"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Crush within 48 hours of cutting to avoid sucrose loss.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Cut at ground level; lower internodes are richest"},
		},
	},
	models.CropTypePulses: {
		StageSowing: {
			Fertilizer: "Apply starter dose of DAP; inoculate seed with rhizobium.",
			PestAlert:  "Protect emerging seedlings from cutworms.",
			Irrigation: "One light irrigation if soil is dry at sowing.",
			Tips:       []string{"Avoid waterlogged fields for sowing"},
		},
		StageVegetative: {
			Fertilizer: "Minimal nitrogen needed; nodules fix their own.",
			PestAlert:  "Aphids and leaf miners on tender growth.",
			Irrigation: "Irrigate only at visible stress; pulses dislike excess water.",
			Tips:       []string{"One hoeing at 25-30 days controls weeds"},
		},
		StageFlowering: {
			Fertilizer: "Foliar spray of 2% DAP boosts pod set.",
			PestAlert:  "Pod borer is the major threat; spray at first larvae sighting.",
			Irrigation: "Irrigate at flowering and pod filling; skip otherwise.",
			Tips:       []string{"Install bird perches for natural borer control"},
		},
		StageMaturity: {
			Fertilizer: "No further fertilizer needed.",
			PestAlert:  "Bruchid infestation begins in the field; harvest on time.",
			Irrigation: "Stop irrigation as pods yellow.",
			Tips:       []string{"Harvest when 80% pods turn brown"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Sun-dry grain and store with neem leaves against bruchids.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Thresh gently to avoid splitting grain"},
		},
	},
	models.CropTypeVegetables: {
		StageSowing: {
			Fertilizer: "Work well-decomposed FYM into beds before sowing.",
			PestAlert:  "Damping-off in nursery beds; avoid overwatering.",
			Irrigation: "Frequent light watering until seedlings establish.",
			Tips:       []string{"Raise seedlings on raised beds"},
		},
		StageVegetative: {
			Fertilizer: "Apply nitrogen in small weekly doses for leafy growth.",
			PestAlert:  "Leaf-eating caterpillars and flea beetles; inspect undersides.",
			Irrigation: "Irrigate every 3-5 days; shallow roots dry out fast.",
			Tips:       []string{"Mulch beds to conserve moisture"},
		},
		StageFlowering: {
			Fertilizer: "Shift to potash-rich feeding for fruit set.",
			PestAlert:  "Fruit borer and thrips attack at flowering; act early.",
			Irrigation: "Keep moisture even; fluctuation causes flower drop.",
			Tips:       []string{"Hand-pollinate cucurbits in low bee activity"},
		},
		StageMaturity: {
			Fertilizer: "Reduce nitrogen; continue potash through picking.",
			PestAlert:  "Check ripening fruit for fruit fly stings.",
			Irrigation: "Irrigate after each picking round.",
			Tips:       []string{"Pick at tender marketable stage, not full size"},
		},
		StageHarvest: {
			Fertilizer: "",
			PestAlert:  "Grade out damaged produce; it spreads rot in transit.",
			Irrigation: "No irrigation required.",
			Tips:       []string{"Harvest in early morning for shelf life"},
		},
	},
}

// soilProfileTable is keyed by soil type; one entry per type.
var soilProfileTable = map[models.SoilType]SoilProfile{
	models.SoilTypeAlluvial: {
		Retention: RetentionMedium,
		Drainage:  "Well drained with balanced percolation.",
		Fertility: "High natural fertility, rich in potash and lime.",
		Tips:      []string{"Suits most cereals with standard irrigation schedules"},
	},
	models.SoilTypeBlack: {
		Retention: RetentionHigh,
		Drainage:  "Poor drainage; cracks deeply when dry.",
		Fertility: "Rich in calcium, magnesium and iron, low in nitrogen.",
		Tips:      []string{"Avoid irrigation right before heavy rain, waterlogs easily"},
	},
	models.SoilTypeRed: {
		Retention: RetentionLow,
		Drainage:  "Drains quickly; porous structure.",
		Fertility: "Low in nitrogen, phosphorus and humus.",
		Tips:      []string{"Irrigate in short frequent cycles", "Add organic matter every season"},
	},
	models.SoilTypeLaterite: {
		Retention: RetentionLow,
		Drainage:  "Very free draining; leaches nutrients in rain.",
		Fertility: "Acidic and poor in lime and magnesia.",
		Tips:      []string{"Split fertilizer doses to reduce leaching losses", "Apply lime to correct acidity"},
	},
	models.SoilTypeSandy: {
		Retention: RetentionLow,
		Drainage:  "Excessively drained; holds little moisture.",
		Fertility: "Low fertility, poor nutrient holding capacity.",
		Tips:      []string{"Irrigate lightly but often", "Mulch to slow evaporation"},
	},
}

// AdvisoryFor returns the static advisory entry for a crop type and stage.
// The boolean is false only when the dataset is incomplete, which
// ValidateDatasets rules out at startup.
func AdvisoryFor(cropType models.CropType, stage GrowthStage) (CropAdvisory, bool) {
	stages, ok := cropAdvisoryTable[cropType]
	if !ok {
		return CropAdvisory{}, false
	}
	adv, ok := stages[stage]
	return adv, ok
}

// SoilProfileFor returns the static profile for a soil type.
func SoilProfileFor(soilType models.SoilType) (SoilProfile, bool) {
	profile, ok := soilProfileTable[soilType]
	return profile, ok
}

// ValidateDatasets checks the completeness invariants of the static
// reference data: every (crop type, stage) pair has an advisory entry,
// every crop type has a stage boundary table, and every soil type has a
// profile. Call once at startup; a failure is a build defect, not runtime
// data.
func ValidateDatasets() error {
	for _, cropType := range models.ValidCropTypes() {
		if _, ok := cropStageTable[cropType]; !ok {
			return fmt.Errorf("missing stage boundaries for crop type %q", cropType)
		}

		stages, ok := cropAdvisoryTable[cropType]
		if !ok {
			return fmt.Errorf("missing advisory entries for crop type %q", cropType)
		}
		for _, stage := range AllStages() {
			if _, ok := stages[stage]; !ok {
				return fmt.Errorf("missing advisory entry for %q at stage %s", cropType, stage)
			}
		}
	}

	for _, soilType := range models.ValidSoilTypes() {
		if _, ok := soilProfileTable[soilType]; !ok {
			return fmt.Errorf("missing soil profile for soil type %q", soilType)
		}
	}

	return nil
}
