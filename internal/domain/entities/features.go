package entities

// FeatureVector maps feature names to values. Builders emit the complete
// schema for every candidate; a value of 0 means "absent input", never
// "undefined".
type FeatureVector map[string]float64

// Get returns the named feature value, 0 when the name is not present.
func (v FeatureVector) Get(name string) float64 {
	return v[name]
}

// FeatureSchemaVersion identifies the feature schema produced by the builder.
// Trained model artifacts declare the schema they expect via the manifest's
// feature count; a mismatch downgrades scoring to the fallback.
const FeatureSchemaVersion = "v1"

// Session-level feature names.
const (
	FeatSessionLength      = "session_length"
	FeatSessionLengthLog   = "session_length_log"
	FeatUniqueItems        = "unique_items"
	FeatItemRepetitionRate = "item_repetition_rate"
	FeatViewCount          = "view_count"
	FeatClickCount         = "click_count"
	FeatAddToCartCount     = "add_to_cart_count"
	FeatPurchaseCount      = "purchase_count"
	FeatViewRate           = "view_rate"
	FeatClickThroughRate   = "click_through_rate"
	FeatAddToCartRate      = "add_to_cart_rate"
	FeatConversionRate     = "conversion_rate"
	FeatEngagementScore    = "engagement_score"
)

// Item-level feature names.
const (
	FeatItemPopularity           = "item_popularity"
	FeatItemPopularityLog        = "item_popularity_log"
	FeatItemPopularityRank       = "item_popularity_rank"
	FeatItemPopularityPercentile = "item_popularity_percentile"
)

// Interaction feature names.
const (
	FeatInSession               = "in_session"
	FeatLastSeenPosition        = "last_seen_position"
	FeatRecencyScore            = "recency_score"
	FeatItemFrequencyInSession  = "item_frequency_in_session"
	FeatMaxSimilarityToSession  = "max_similarity_to_session"
	FeatMeanSimilarityToSession = "mean_similarity_to_session"
	FeatSumSimilarityToSession  = "sum_similarity_to_session"
	FeatSimilarityToLastItem    = "similarity_to_last_item"
)

// Temporal feature names.
const (
	FeatHourOfDay         = "hour_of_day"
	FeatDayOfWeek         = "day_of_week"
	FeatIsWeekend         = "is_weekend"
	FeatIsBusinessHours   = "is_business_hours"
	FeatHourSin           = "hour_sin"
	FeatHourCos           = "hour_cos"
	FeatDaySin            = "day_sin"
	FeatDayCos            = "day_cos"
	FeatSessionAgeMinutes = "session_age_minutes"
	FeatSessionAgeLog     = "session_age_log"
)

var featureSchema = []string{
	FeatSessionLength,
	FeatSessionLengthLog,
	FeatUniqueItems,
	FeatItemRepetitionRate,
	FeatViewCount,
	FeatClickCount,
	FeatAddToCartCount,
	FeatPurchaseCount,
	FeatViewRate,
	FeatClickThroughRate,
	FeatAddToCartRate,
	FeatConversionRate,
	FeatEngagementScore,
	FeatItemPopularity,
	FeatItemPopularityLog,
	FeatItemPopularityRank,
	FeatItemPopularityPercentile,
	FeatInSession,
	FeatLastSeenPosition,
	FeatRecencyScore,
	FeatItemFrequencyInSession,
	FeatMaxSimilarityToSession,
	FeatMeanSimilarityToSession,
	FeatSumSimilarityToSession,
	FeatSimilarityToLastItem,
	FeatHourOfDay,
	FeatDayOfWeek,
	FeatIsWeekend,
	FeatIsBusinessHours,
	FeatHourSin,
	FeatHourCos,
	FeatDaySin,
	FeatDayCos,
	FeatSessionAgeMinutes,
	FeatSessionAgeLog,
}

// FeatureNames returns the canonical feature schema in declaration order.
// The caller owns the returned slice.
func FeatureNames() []string {
	out := make([]string, len(featureSchema))
	copy(out, featureSchema)
	return out
}

// FeatureCount is the size of the canonical schema.
func FeatureCount() int {
	return len(featureSchema)
}

// NewFeatureVector allocates a vector with every schema entry set to 0.
func NewFeatureVector() FeatureVector {
	v := make(FeatureVector, len(featureSchema))
	for _, name := range featureSchema {
		v[name] = 0
	}
	return v
}
