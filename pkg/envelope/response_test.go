package envelope

import (
	"encoding/json"
	"testing"
)

func TestGuardsPartitionWellFormedEnvelopes(t *testing.T) {
	pagination := &Pagination{Page: 1, PageSize: 10, Total: 25, TotalPages: 3}

	tests := []struct {
		name          string
		resp          *Response[int]
		wantStandard  bool
		wantError     bool
		wantPaginated bool
	}{
		{
			name:         "standard success",
			resp:         NewSuccess(42, ""),
			wantStandard: true,
		},
		{
			name:         "standard success without data",
			resp:         &Response[int]{Status: StatusSuccess},
			wantStandard: true,
		},
		{
			name:      "error",
			resp:      NewError[int]("Not Found", "prompt does not exist", ""),
			wantError: true,
		},
		{
			name:          "paginated success",
			resp:          &Response[int]{Status: StatusSuccess, Pagination: pagination},
			wantPaginated: true,
		},
		{
			name: "unknown discriminant",
			resp: &Response[int]{Status: "pending"},
		},
		{
			name: "error missing title",
			resp: &Response[int]{Status: StatusError, Type: "api_error"},
		},
		{
			name: "nil envelope",
			resp: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resp.IsStandard(); got != tt.wantStandard {
				t.Errorf("IsStandard() = %v, want %v", got, tt.wantStandard)
			}
			if got := tt.resp.IsError(); got != tt.wantError {
				t.Errorf("IsError() = %v, want %v", got, tt.wantError)
			}
			if got := tt.resp.IsPaginated(); got != tt.wantPaginated {
				t.Errorf("IsPaginated() = %v, want %v", got, tt.wantPaginated)
			}

			matches := 0
			for _, m := range []bool{tt.resp.IsStandard(), tt.resp.IsError(), tt.resp.IsPaginated()} {
				if m {
					matches++
				}
			}
			if matches > 1 {
				t.Errorf("guards overlap: %d variants matched", matches)
			}

			wantWellFormed := tt.wantStandard || tt.wantError || tt.wantPaginated
			if got := tt.resp.IsWellFormed(); got != wantWellFormed {
				t.Errorf("IsWellFormed() = %v, want %v", got, wantWellFormed)
			}

			wantSuccess := tt.wantStandard || tt.wantPaginated
			if got := tt.resp.IsSuccess(); got != wantSuccess {
				t.Errorf("IsSuccess() = %v, want %v", got, wantSuccess)
			}
		})
	}
}

func TestGuardsFromWire(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string // standard | error | paginated | none
	}{
		{
			name: "standard",
			body: `{"status":"success","data":{"id":"p1"},"meta":{"timestamp":"2026-01-01T00:00:00Z"}}`,
			want: "standard",
		},
		{
			name: "paginated",
			body: `{"status":"success","data":[{"id":"p1"}],"pagination":{"page":1,"page_size":10,"total":1,"total_pages":1},"meta":{}}`,
			want: "paginated",
		},
		{
			name: "error",
			body: `{"status":"error","type":"not_found","title":"Not Found","meta":{}}`,
			want: "error",
		},
		{
			name: "wrong discriminant",
			body: `{"status":"partial","data":{"id":"p1"},"meta":{}}`,
			want: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response[json.RawMessage]
			if err := json.Unmarshal([]byte(tt.body), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			got := "none"
			switch {
			case resp.IsStandard():
				got = "standard"
			case resp.IsError():
				got = "error"
			case resp.IsPaginated():
				got = "paginated"
			}
			if got != tt.want {
				t.Errorf("variant = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConstructorsStampMeta(t *testing.T) {
	success := NewSuccess("hello", "created")
	if success.Meta.Timestamp == "" {
		t.Error("NewSuccess meta timestamp is empty")
	}
	if success.Meta.RequestID == "" {
		t.Error("NewSuccess meta request ID is empty")
	}
	if success.Message != "created" {
		t.Errorf("Message = %q, want %q", success.Message, "created")
	}

	errResp := NewError[string]("Bad Request", "", "")
	if errResp.Type != DefaultErrorType {
		t.Errorf("Type = %q, want %q", errResp.Type, DefaultErrorType)
	}
	if errResp.Meta.Timestamp == "" {
		t.Error("NewError meta timestamp is empty")
	}

	paginated := NewPaginated([]int{1, 2}, Pagination{Page: 1, PageSize: 2, Total: 2, TotalPages: 1})
	if !paginated.IsPaginated() {
		t.Error("NewPaginated envelope is not paginated")
	}
}

func TestMapTransformsSuccessPayload(t *testing.T) {
	resp := NewSuccess(21, "")
	mapped := Map(resp, func(v int) int { return v * 2 })

	data, err := mapped.Unwrap()
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if data != 42 {
		t.Errorf("mapped data = %d, want 42", data)
	}
}

func TestMapPassesErrorsThrough(t *testing.T) {
	resp := NewError[int]("Bad Request", "invalid prompt", "")
	mapped := Map(resp, func(v int) string { return "unused" })

	if !mapped.IsError() {
		t.Fatal("mapped error envelope is not an error")
	}
	if mapped.Detail != "invalid prompt" {
		t.Errorf("Detail = %q, want %q", mapped.Detail, "invalid prompt")
	}
	if mapped.Data != nil {
		t.Error("mapped error envelope has data")
	}
}

func TestMapEachTransformsElements(t *testing.T) {
	resp := NewPaginated([]int{1, 2, 3}, Pagination{Page: 1, PageSize: 3, Total: 3, TotalPages: 1})
	mapped := MapEach(resp, func(v int) int { return v * 10 })

	items, err := mapped.Unwrap()
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	want := []int{10, 20, 30}
	for i, item := range items {
		if item != want[i] {
			t.Errorf("items[%d] = %d, want %d", i, item, want[i])
		}
	}
	if mapped.PaginationInfo() == nil {
		t.Error("pagination lost in MapEach")
	}
}
