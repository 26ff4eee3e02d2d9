package response

import (
	"encoding/json"
	"testing"

	"webinar_billing/internal/usecase"
)

func TestFromCreateOrderOutput(t *testing.T) {
	link := "https://pay.example/abc"
	res := FromCreateOrderOutput(usecase.CreateOrderOutput{
		PaymentLink:     &link,
		GatewayResponse: json.RawMessage(`{"cf_order_id":1}`),
	})

	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"payment_link":"https://pay.example/abc","cfData":{"cf_order_id":1}}` {
		t.Fatalf("unexpected body: %s", b)
	}
}

func TestFromCreateOrderOutput_NullLink(t *testing.T) {
	b, err := json.Marshal(FromCreateOrderOutput(usecase.CreateOrderOutput{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"payment_link":null,"cfData":null}` {
		t.Fatalf("unexpected body: %s", b)
	}
}

func TestFromCheckStatusResult(t *testing.T) {
	res := FromCheckStatusResult(usecase.CheckStatusResult{
		OrderID:         "REG_1",
		Status:          "PAID",
		GatewayResponse: json.RawMessage(`{"order_status":"PAID"}`),
	})
	if res.OrderID != "REG_1" || res.Status != "PAID" {
		t.Fatalf("unexpected fields: %+v", res)
	}

	b, _ := json.Marshal(res)
	if string(b) != `{"orderId":"REG_1","status":"PAID","cfData":{"order_status":"PAID"}}` {
		t.Fatalf("unexpected body: %s", b)
	}
}
