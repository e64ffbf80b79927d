package ai

import "strings"

// PromptTemplate is a selectable extraction prompt
type PromptTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"` // PN, PX, AUTO
	Text string `json:"prompt_text"`
}

// DefaultPromptID is used when a request names neither a prompt nor a template
const DefaultPromptID = "auto"

const classifyRules = `Bạn là chuyên gia phân loại chứng từ kho.

QUY TẮC PHÂN LOẠI NGHIÊM NGẶT:
1. ƯU TIÊN PN: Nếu tiêu đề chứa từ "NHẬP" hoặc chứa CẢ HAI từ "NHẬP" và "XUẤT" (VD: "Yêu cầu nhập xuất kho") -> PHẢI phân loại là "PN" (Phiếu Nhập Kho).
2. PHÂN LOẠI PX: Chỉ phân loại là "PX" khi tiêu đề là "PHIẾU GIAO HÀNG", "PHIẾU XUẤT KHO" hoặc nội dung CHỈ chứa từ "XUẤT" mà không có từ "NHẬP".
3. PHÂN LOẠI PDC: Phiếu điều chuyển giữa hai kho.
4. TRƯỜNG HỢP KHÁC: Mặc định chọn "PN".
`

const inboundPrompt = `Bạn là một AI chuyên trích xuất dữ liệu từ phiếu nhập kho. Hãy phân tích ảnh phiếu nhập kho và trích xuất thông tin sau dưới dạng JSON:

{
  "document_type": "PN",
  "document_number": "Số phiếu (ví dụ: PN-001)",
  "document_date": "Ngày phiếu (format: YYYY-MM-DD)",
  "warehouse": { "name": "Tên kho nhập", "code": "Mã kho (nếu có)" },
  "supplier": { "name": "Tên nhà cung cấp", "address": "Địa chỉ", "phone": "Số điện thoại" },
  "items": [{ "name": "Tên vật tư", "quantity": 0, "unit": "Đơn vị tính", "notes": "Ghi chú" }],
  "notes": "Ghi chú chung của phiếu",
  "confidence": 0
}

confidence là điểm tin cậy từ 0-100.`

const outboundPrompt = `Bạn là một AI chuyên trích xuất dữ liệu từ phiếu xuất kho. Hãy phân tích ảnh phiếu xuất kho và trích xuất thông tin sau dưới dạng JSON:

{
  "document_type": "PX",
  "document_number": "Số phiếu (ví dụ: PX-001)",
  "document_date": "Ngày phiếu (format: YYYY-MM-DD)",
  "warehouse": { "name": "Tên kho xuất", "code": "Mã kho (nếu có)" },
  "recipient": { "name": "Tên người/đơn vị nhận", "address": "Địa chỉ", "phone": "Số điện thoại" },
  "items": [{ "name": "Tên vật tư", "quantity": 0, "unit": "Đơn vị tính", "notes": "Ghi chú" }],
  "notes": "Ghi chú chung của phiếu",
  "confidence": 0
}

confidence là điểm tin cậy từ 0-100.`

// DefaultPrompts returns the built-in templates
func DefaultPrompts() []PromptTemplate {
	return []PromptTemplate{
		{ID: "auto", Name: "Tự động nhận diện", Code: "AUTO", Text: autoPrompt()},
		{ID: "pn", Name: "Phiếu Nhập Kho", Code: "PN", Text: inboundPrompt},
		{ID: "px", Name: "Phiếu Xuất Kho", Code: "PX", Text: outboundPrompt},
	}
}

// FindPrompt looks a template up by id
func FindPrompt(id string) (PromptTemplate, bool) {
	for _, p := range DefaultPrompts() {
		if p.ID == strings.ToLower(strings.TrimSpace(id)) {
			return p, true
		}
	}
	return PromptTemplate{}, false
}

func autoPrompt() string {
	var sb strings.Builder
	sb.WriteString(classifyRules)
	sb.WriteString("\nHÃY PHÂN TÍCH VÀ CHỈ TRẢ VỀ MỘT ĐỐI TƯỢNG JSON theo JSON Schema sau:\n")
	sb.WriteString(ExtractionSchema())
	sb.WriteString("\n\nLưu ý: Ưu tiên đọc mã QR trên phiếu nếu có. confidence là điểm tin cậy từ 0-100.")
	return sb.String()
}
