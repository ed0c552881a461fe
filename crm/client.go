package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNoSession вызов требует аутентифицированной SOAP-сессии
	ErrNoSession = errors.New("no CRM session, login required")
	// ErrNoEntry запрошенная запись отсутствует в CRM
	ErrNoEntry = errors.New("entry not found in CRM")
)

// Config конфигурация SOAP-клиента CRM
type Config struct {
	URL     string
	AppName string
	// Username и PasswordHash (md5 от пароля) для login вызова
	Username     string
	PasswordHash string

	Timeout   time.Duration
	RateLimit rate.Limit
}

// Client клиент SugarCRM SOAP v2. Сессия одна на клиента, поэтому
// Session сериализует конкурентные вызовы; Login и Logout напрямую
// предназначены для одиночного вызывающего.
type Client struct {
	url          string
	appname      string
	username     string
	passwordHash string

	httpClient *http.Client
	limiter    *rate.Limiter

	// mu защищает sessionID: параллельные session-блоки выполняются
	// по очереди, чтобы logout одного не обрывал сессию другого
	mu        sync.Mutex
	sessionID string
}

// NewClient создает новый SOAP-клиент
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = rate.Every(200 * time.Millisecond)
	}

	return &Client{
		url:          cfg.URL,
		appname:      cfg.AppName,
		username:     cfg.Username,
		passwordHash: cfg.PasswordHash,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(cfg.RateLimit, 1),
	}
}

// Login открывает SOAP-сессию
func (c *Client) Login(ctx context.Context) error {
	body := fmt.Sprintf(
		`<login><user_auth><user_name>%s</user_name><password>%s</password></user_auth><application_name>%s</application_name></login>`,
		xmlEscape(c.username), xmlEscape(c.passwordHash), xmlEscape(c.appname))

	resp, err := c.call(ctx, "login", body)
	if err != nil {
		return fmt.Errorf("CRM login: %w", err)
	}

	id, err := parseLoginResponse(resp)
	if err != nil {
		return fmt.Errorf("CRM login: %w", err)
	}
	c.sessionID = id
	return nil
}

// Logout закрывает сессию
func (c *Client) Logout(ctx context.Context) error {
	if err := c.checkSession(); err != nil {
		return err
	}

	body := fmt.Sprintf(`<logout><session>%s</session></logout>`, xmlEscape(c.sessionID))
	_, err := c.call(ctx, "logout", body)
	c.sessionID = ""
	if err != nil {
		return fmt.Errorf("CRM logout: %w", err)
	}
	return nil
}

// Session выполняет fn внутри SOAP-сессии: login при входе,
// logout при выходе на любом пути. Конкурентные сессии выполняются
// по очереди
func (c *Client) Session(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Login(ctx); err != nil {
		return err
	}
	defer func() {
		// Ошибка logout не перекрывает ошибку fn
		_ = c.Logout(context.WithoutCancel(ctx))
	}()

	return fn(ctx)
}

// GetEntryList возвращает все записи модуля по запросу.
// Сервер игнорирует max_results, поэтому страницы читаются по offset,
// пока result_count не станет нулевым.
func (c *Client) GetEntryList(ctx context.Context, module, query, orderBy string, fields []string) ([]map[string]string, error) {
	if err := c.checkSession(); err != nil {
		return nil, err
	}

	var results []map[string]string
	offset := 0

	for {
		body := fmt.Sprintf(
			`<get_entry_list><session>%s</session><module_name>%s</module_name><query>%s</query><order_by>%s</order_by><offset>%d</offset>%s</get_entry_list>`,
			xmlEscape(c.sessionID), xmlEscape(module), xmlEscape(query),
			xmlEscape(orderBy), offset, fieldList(fields))

		resp, err := c.call(ctx, "get_entry_list", body)
		if err != nil {
			return nil, fmt.Errorf("CRM get_entry_list (offset %d): %w", offset, err)
		}

		page, err := parseEntryListResponse(resp)
		if err != nil {
			return nil, fmt.Errorf("CRM get_entry_list (offset %d): %w", offset, err)
		}

		if page.ResultCount == 0 {
			break
		}
		results = append(results, page.Entries...)

		// Сервер обязан продвигать offset; иначе пагинация зациклится
		if page.NextOffset <= offset {
			break
		}
		offset = page.NextOffset
	}

	return results, nil
}

// GetEntry возвращает одну запись модуля по id или ErrNoEntry
func (c *Client) GetEntry(ctx context.Context, module, id string, fields []string) (map[string]string, error) {
	if err := c.checkSession(); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		`<get_entry><session>%s</session><module_name>%s</module_name><id>%s</id>%s</get_entry>`,
		xmlEscape(c.sessionID), xmlEscape(module), xmlEscape(id), fieldList(fields))

	resp, err := c.call(ctx, "get_entry", body)
	if err != nil {
		return nil, fmt.Errorf("CRM get_entry %s: %w", id, err)
	}

	entry, err := parseEntryResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("CRM get_entry %s: %w", id, err)
	}
	return entry, nil
}

func (c *Client) checkSession() error {
	if c.sessionID == "" {
		return ErrNoSession
	}
	return nil
}

// call отправляет один SOAP-вызов и возвращает тело ответа
func (c *Client) call(ctx context.Context, method, body string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	envelope := buildEnvelope(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(envelope))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", method)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readResponse(resp)
}

func fieldList(fields []string) string {
	var sb strings.Builder
	sb.WriteString("<select_fields>")
	for _, f := range fields {
		sb.WriteString("<item>")
		sb.WriteString(xmlEscape(f))
		sb.WriteString("</item>")
	}
	sb.WriteString("</select_fields>")
	return sb.String()
}
