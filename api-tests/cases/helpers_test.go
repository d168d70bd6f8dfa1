package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// waitForHealth chờ server lên tới khi health trả 200; hết số lần thử thì
// skip toàn bộ test (bộ test này cần server chạy sẵn tại localhost:8080).
func waitForHealth(baseURL string, attempts int, delay time.Duration, t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < attempts; i++ {
		resp, err := client.Get(baseURL + "/system/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(delay)
	}
	t.Skipf("⚠️ Server chưa chạy tại %s, skip bộ test API", baseURL)
}

// parseEnvelope parse envelope chuẩn {code, message, status, data}.
func parseEnvelope(t *testing.T, body []byte) map[string]interface{} {
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("❌ Không parse được JSON response: %v\nbody: %s", err, body)
	}
	return result
}

// dataObject lấy field data dạng object từ envelope.
func dataObject(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("❌ data không phải object: %v", envelope["data"])
	}
	return data
}

// dataArray lấy field data dạng mảng từ envelope.
func dataArray(t *testing.T, envelope map[string]interface{}) []interface{} {
	data, ok := envelope["data"].([]interface{})
	if !ok {
		t.Fatalf("❌ data không phải mảng: %v", envelope["data"])
	}
	return data
}
