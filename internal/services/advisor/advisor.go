package advisor

import (
	"fmt"
	"time"

	"crop-advisory-engine/internal/models"
)

// Weather rule thresholds. These encode product policy, not physics; keep
// them as named constants so they can be revisited without touching rule
// logic.
const (
	// HeavyRainChance is the precipitation chance at or above which a
	// rainy forecast day counts as a waterlogging risk.
	HeavyRainChance = 70

	// DrySpellMaxChance is the highest precipitation chance any snapshot
	// day may carry for the forecast to still count as a dry spell.
	DrySpellMaxChance = 20
)

// ActionDateLayout is the display format for insight action dates.
const ActionDateLayout = "02 Jan 2006"

// rule identifies a single advisory rule for de-duplication. Each rule
// fires at most once per plot per invocation.
type rule string

const (
	ruleStageFertilizer rule = "stage_fertilizer"
	ruleStagePest       rule = "stage_pest"
	ruleHeavyRain       rule = "heavy_rain"
	ruleDrySpell        rule = "dry_spell"
	ruleLowRetention    rule = "low_retention"
)

// ComputeForwardInsights evaluates every advisory rule against an
// application state snapshot and returns the prioritized insight list.
//
// The function is pure and total: it never fails for a well-formed state,
// an empty plot list yields an empty slice, and an empty weather snapshot
// simply produces no weather insights. Insights are grouped by plot in
// registration order; within a plot Critical entries precede Warning,
// which precede Normal, each bucket preserving rule-evaluation order. The
// result is never truncated here; display truncation is a presentation
// concern.
func ComputeForwardInsights(state models.AppState, now time.Time) []models.Insight {
	insights := make([]models.Insight, 0, len(state.Crops)*3)

	for _, crop := range state.Crops {
		insights = append(insights, compileForPlot(crop, state.Weather, now)...)
	}

	return insights
}

// plotCompiler accumulates one plot's insights into priority buckets and
// enforces the one-insight-per-rule invariant.
type plotCompiler struct {
	crop       models.Crop
	actionDate string
	seen       map[rule]bool
	critical   []models.Insight
	warning    []models.Insight
	normal     []models.Insight
}

func (c *plotCompiler) emit(r rule, priority models.InsightPriority, category models.InsightCategory, title, description string) {
	if c.seen[r] {
		return
	}
	c.seen[r] = true

	ins := models.Insight{
		PlotID:      c.crop.ID,
		PlotName:    c.crop.Nickname,
		Title:       title,
		Description: description,
		Priority:    priority,
		Category:    category,
		ActionDate:  c.actionDate,
	}

	switch priority {
	case models.PriorityCritical:
		c.critical = append(c.critical, ins)
	case models.PriorityWarning:
		c.warning = append(c.warning, ins)
	default:
		c.normal = append(c.normal, ins)
	}
}

// result returns the plot's insights with Critical first, then Warning,
// then Normal, stably ordered within each bucket.
func (c *plotCompiler) result() []models.Insight {
	out := make([]models.Insight, 0, len(c.critical)+len(c.warning)+len(c.normal))
	out = append(out, c.critical...)
	out = append(out, c.warning...)
	out = append(out, c.normal...)
	return out
}

// compileForPlot runs all rules for a single plot.
func compileForPlot(crop models.Crop, weather []models.WeatherDay, now time.Time) []models.Insight {
	c := &plotCompiler{
		crop:       crop,
		actionDate: now.Format(ActionDateLayout),
		seen:       make(map[rule]bool),
	}

	stage := CalculateGrowthStage(crop.CropType, crop.SowingDate, now)

	if adv, ok := AdvisoryFor(crop.CropType, stage); ok {
		if adv.Fertilizer != "" {
			c.emit(ruleStageFertilizer, models.PriorityNormal, models.CategoryFertilizer,
				fmt.Sprintf("%s stage fertilizer plan", stage), adv.Fertilizer)
		}
		if adv.PestAlert != "" {
			c.emit(ruleStagePest, pestPriority(stage), models.CategoryPest,
				fmt.Sprintf("%s stage pest watch", stage), adv.PestAlert)
		}
	}

	evaluateWeatherRules(c, stage, weather)

	if profile, ok := SoilProfileFor(crop.SoilType); ok && profile.Retention == RetentionLow {
		tip := "Irrigate in short frequent cycles to compensate for fast drainage."
		if len(profile.Tips) > 0 {
			tip = profile.Tips[0] + "."
		}
		c.emit(ruleLowRetention, models.PriorityNormal, models.CategorySoil,
			fmt.Sprintf("Low water retention on %s soil", crop.SoilType),
			fmt.Sprintf("%s soil holds little moisture. %s", crop.SoilType, tip))
	}

	return c.result()
}

// pestPriority escalates pest alerts during the crop's critical windows.
func pestPriority(stage GrowthStage) models.InsightPriority {
	if stage == StageFlowering || stage == StageHarvest {
		return models.PriorityWarning
	}
	return models.PriorityNormal
}

// evaluateWeatherRules applies the forecast-driven rules for one plot.
// An empty snapshot produces no insights.
func evaluateWeatherRules(c *plotCompiler, stage GrowthStage, weather []models.WeatherDay) {
	if len(weather) == 0 {
		return
	}

	severeDay, severe := findSevereDay(weather)
	if severe {
		c.emit(ruleHeavyRain, models.PriorityCritical, models.CategoryWeather,
			"Heavy rain warning",
			fmt.Sprintf("Forecast shows %s with %d%% precipitation chance on %s. Clear drainage channels now to prevent waterlogging.",
				severeDay.Condition, severeDay.PrecipChance, severeDay.Date))
		return
	}

	today := weather[0]
	if today.Condition == models.WeatherSunny && isDrySpell(weather) &&
		(stage == StageVegetative || stage == StageFlowering) {
		c.emit(ruleDrySpell, models.PriorityWarning, models.CategoryWeather,
			"Irrigation reminder",
			fmt.Sprintf("Dry sunny spell ahead with no rain expected. The crop is in the %s stage and needs steady moisture; schedule irrigation today.", stage))
	}
}

// findSevereDay returns the first forecast day that triggers the
// waterlogging rule: a storm, or rain with a high precipitation chance.
func findSevereDay(weather []models.WeatherDay) (models.WeatherDay, bool) {
	for _, day := range weather {
		if day.Condition == models.WeatherStorm {
			return day, true
		}
		if day.Condition == models.WeatherRainy && day.PrecipChance >= HeavyRainChance {
			return day, true
		}
	}
	return models.WeatherDay{}, false
}

// isDrySpell reports whether the whole snapshot is rain-free: no rainy or
// storm days and every precipitation chance at or below the dry threshold.
func isDrySpell(weather []models.WeatherDay) bool {
	for _, day := range weather {
		if day.Condition == models.WeatherRainy || day.Condition == models.WeatherStorm {
			return false
		}
		if day.PrecipChance > DrySpellMaxChance {
			return false
		}
	}
	return true
}
