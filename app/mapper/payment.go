package mapper

import (
	"time"

	"github.com/zemen-travel/ms-go-payments/app/entity"
	"github.com/zemen-travel/ms-go-payments/app/types"
)

func PaymentToView(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		TxRef:                item.TxRef,
		Amount:               item.Amount.String(),
		Currency:             item.Currency,
		Email:                item.Email,
		FullName:             item.FullName,
		PhoneNumber:          item.PhoneNumber,
		Status:               entity.StatusName(item.Status),
		CheckoutURL:          derefString(item.CheckoutURL),
		GatewayTransactionID: derefString(item.GatewayTransactionID),
		CreatedAt:            item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:            item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentsToView(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToView(item))
	}
	return result
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
