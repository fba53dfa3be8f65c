package handler

import (
	"github.com/zapshift/parcel-system/internal/core/domain"
)

func parcelSelfLinks(trackingID string) parcelLinks {
	return parcelLinks{
		Self:  "/v1/parcels/" + trackingID,
		Track: "/v1/parcels/" + trackingID + "/track",
	}
}

func toPartyResponse(p domain.Party) partyResponse {
	return partyResponse{
		Name:        p.Name,
		Contact:     p.Contact,
		Region:      p.Region,
		District:    p.District,
		Warehouse:   p.Warehouse,
		Address:     p.Address,
		Instruction: p.Instruction,
	}
}

func toHistoryResponse(entries []domain.HistoryEntry) []historyEntryResponse {
	out := make([]historyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryResponse{
			Status:    e.Status,
			Timestamp: e.Timestamp,
			Actor:     e.Actor,
			Notes:     e.Notes,
		})
	}
	return out
}

func toParcelDetail(p *domain.Parcel) parcelDetailResponse {
	return parcelDetailResponse{
		TrackingID: p.TrackingID,
		ParcelName: p.ParcelName,
		ParcelType: string(p.Type),
		WeightKg:   p.WeightKg,
		Sender:     toPartyResponse(p.Sender),
		Receiver:   toPartyResponse(p.Receiver),
		Cost: costResponse{
			BaseCost:     p.Cost.BaseCost,
			ExtraCharges: p.Cost.ExtraCharges,
			TotalCost:    p.Cost.TotalCost,
			Zone:         string(p.Cost.Zone),
		},
		DeliveryCost:       p.DeliveryCost,
		PaymentMethod:      p.PaymentMethod,
		PaymentStatus:      string(p.PaymentStatus),
		ParcelStatus:       string(p.ParcelStatus),
		DeliveryStatus:     string(p.DeliveryStatus),
		AssignedRiderEmail: p.AssignedRiderEmail,
		CreatedBy:          p.CreatedBy,
		CreatedAt:          p.CreatedAt,
		ExpectedDelivery:   p.ExpectedDelivery,
		DeliveredAt:        p.DeliveredAt,
		History:            toHistoryResponse(p.History),
		Links:              parcelSelfLinks(p.TrackingID),
	}
}

func toParcelSummary(p *domain.Parcel) parcelSummaryResponse {
	return parcelSummaryResponse{
		TrackingID:       p.TrackingID,
		ParcelName:       p.ParcelName,
		ParcelType:       string(p.Type),
		ReceiverName:     p.Receiver.Name,
		ReceiverDistrict: p.Receiver.District,
		DeliveryCost:     p.DeliveryCost,
		PaymentStatus:    string(p.PaymentStatus),
		ParcelStatus:     string(p.ParcelStatus),
		DeliveryStatus:   string(p.DeliveryStatus),
		CreatedAt:        p.CreatedAt,
		ExpectedDelivery: p.ExpectedDelivery,
		Links:            parcelSelfLinks(p.TrackingID),
	}
}
