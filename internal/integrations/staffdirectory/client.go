package staffdirectory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса персонала
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// ListStaff получает сотрудников, работающих в указанную дату
func (c *Client) ListStaff(ctx context.Context, date time.Time) ([]StaffMember, error) {
	endpoint := fmt.Sprintf("%s/internal/staff?date=%s", c.baseURL, url.QueryEscape(date.Format(domain.DateFormat)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var list StaffListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return list.Staff, nil
}

// ListEligibleStaff возвращает id сотрудников, которые могут принимать записи в указанную дату
func (c *Client) ListEligibleStaff(ctx context.Context, date time.Time) ([]int64, error) {
	staff, err := c.ListStaff(ctx, date)
	if err != nil {
		c.log.Error("Staff directory unavailable for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, err
	}

	ids := make([]int64, 0, len(staff))
	for _, s := range staff {
		if s.CanTakeAppointments && s.ID > 0 {
			ids = append(ids, s.ID)
		}
	}

	c.log.Info("Staff directory: %d of %d staff eligible on %s", len(ids), len(staff), date.Format(domain.DateFormat))
	return ids, nil
}

// Static справочник с фиксированным списком сотрудников из конфигурации
type Static []int64

// ListEligibleStaff возвращает фиксированный список
func (s Static) ListEligibleStaff(context.Context, time.Time) ([]int64, error) {
	return append([]int64(nil), s...), nil
}
