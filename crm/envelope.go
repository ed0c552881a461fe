package crm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
)

const (
	envelopeHeader = `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soap:Body>`
	envelopeFooter = `</soap:Body></soap:Envelope>`

	// Защита от бесконечно больших ответов сервера
	maxResponseSize = 32 << 20
)

func buildEnvelope(body string) string {
	return envelopeHeader + body + envelopeFooter
}

func xmlEscape(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

// soapFault SOAP-ошибка из тела ответа
type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (f *soapFault) Error() string {
	return fmt.Sprintf("SOAP fault %s: %s", f.Code, f.String)
}

// readResponse читает тело SOAP-ответа и поднимает fault как ошибку
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CRM returned HTTP %d", resp.StatusCode)
	}

	if strings.Contains(string(data), "<faultcode>") {
		var envelope struct {
			Fault soapFault `xml:"Body>Fault"`
		}
		if err := xml.Unmarshal(data, &envelope); err == nil && envelope.Fault.Code != "" {
			return nil, &envelope.Fault
		}
	}

	return data, nil
}

type nameValue struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

type soapEntry struct {
	ID            string `xml:"id"`
	NameValueList struct {
		Items []nameValue `xml:"item"`
	} `xml:"name_value_list"`
}

// toMap разворачивает name_value_list в словарь. Значения CRM отдает
// с HTML-сущностями (&amp; и т.п.), поэтому они декодируются здесь.
func (e *soapEntry) toMap() map[string]string {
	m := make(map[string]string, len(e.NameValueList.Items)+1)
	if e.ID != "" {
		m["id"] = e.ID
	}
	for _, nv := range e.NameValueList.Items {
		m[nv.Name] = html.UnescapeString(nv.Value)
	}
	return m
}

func parseLoginResponse(data []byte) (string, error) {
	var envelope struct {
		Return struct {
			ID string `xml:"id"`
		} `xml:"Body>login_response>return"`
	}
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("parse login response: %w", err)
	}
	if envelope.Return.ID == "" {
		return "", errors.New("login response contains no session id")
	}
	return envelope.Return.ID, nil
}

// entryListPage одна страница результатов get_entry_list
type entryListPage struct {
	ResultCount int
	NextOffset  int
	Entries     []map[string]string
}

func parseEntryListResponse(data []byte) (*entryListPage, error) {
	var envelope struct {
		Return struct {
			ResultCount int `xml:"result_count"`
			NextOffset  int `xml:"next_offset"`
			EntryList   struct {
				Items []soapEntry `xml:"item"`
			} `xml:"entry_list"`
		} `xml:"Body>get_entry_list_response>return"`
	}
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse entry list response: %w", err)
	}

	page := &entryListPage{
		ResultCount: envelope.Return.ResultCount,
		NextOffset:  envelope.Return.NextOffset,
	}
	for i := range envelope.Return.EntryList.Items {
		page.Entries = append(page.Entries, envelope.Return.EntryList.Items[i].toMap())
	}
	return page, nil
}

func parseEntryResponse(data []byte) (map[string]string, error) {
	var envelope struct {
		Return struct {
			EntryList struct {
				Items []soapEntry `xml:"item"`
			} `xml:"entry_list"`
		} `xml:"Body>get_entry_response>return"`
	}
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse entry response: %w", err)
	}

	if len(envelope.Return.EntryList.Items) == 0 {
		return nil, ErrNoEntry
	}
	entry := envelope.Return.EntryList.Items[0].toMap()
	// Удаленные записи CRM отдает с id = -1
	if entry["id"] == "" || entry["id"] == "-1" {
		return nil, ErrNoEntry
	}
	return entry, nil
}
