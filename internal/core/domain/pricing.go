package domain

import "math"

// Zone classifies a route for pricing. The comparison is region-level even
// though the labels read "District"; the cost summary wording follows the
// product copy, the comparison follows the pricing table.
type Zone string

const (
	ZoneWithinDistrict  Zone = "Within District"
	ZoneOutsideDistrict Zone = "Outside District"
)

// Pricing table, in whole BDT.
const (
	documentSameZoneBase  = 60
	documentCrossZoneBase = 80

	nonDocumentSameZoneBase  = 110
	nonDocumentCrossZoneBase = 150

	extraWeightThresholdKg = 3.0
	extraPerKg             = 40
	crossZoneSurcharge     = 40
)

// CostBreakdown is the result of a pricing computation.
type CostBreakdown struct {
	BaseCost     int64 `json:"base_cost" bson:"base_cost"`
	ExtraCharges int64 `json:"extra_charges" bson:"extra_charges"`
	TotalCost    int64 `json:"total_cost" bson:"total_cost"`
	Zone         Zone  `json:"zone" bson:"zone"`
}

// ComputeCost prices a booking from its type, weight, and route. Pure and
// deterministic; weight validation is the caller's responsibility.
func ComputeCost(parcelType ParcelType, weightKg float64, senderRegion, receiverRegion string) CostBreakdown {
	zone := ZoneOutsideDistrict
	if senderRegion == receiverRegion {
		zone = ZoneWithinDistrict
	}

	var base, extra int64
	switch parcelType {
	case TypeDocument:
		base = documentSameZoneBase
		if zone == ZoneOutsideDistrict {
			base = documentCrossZoneBase
		}
	default: // non-document
		base = nonDocumentSameZoneBase
		if zone == ZoneOutsideDistrict {
			base = nonDocumentCrossZoneBase
		}
		if weightKg > extraWeightThresholdKg {
			// Round, don't truncate: (w-3)*40 lands just below the integer for
			// weights like 4.3 and would otherwise undercharge by a taka.
			extra = int64(math.Round((weightKg - extraWeightThresholdKg) * extraPerKg))
			if zone == ZoneOutsideDistrict {
				extra += crossZoneSurcharge
			}
		}
	}

	return CostBreakdown{
		BaseCost:     base,
		ExtraCharges: extra,
		TotalCost:    base + extra,
		Zone:         zone,
	}
}
