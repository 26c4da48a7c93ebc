package repository

import "context"

// Setting keys read by the webhook subsystem. They live in a key-value
// settings table so operators can change them without a redeploy.
const (
	SettingWebhookStockURL  = "webhook_stock_update"
	SettingWebhookStatusURL = "webhook_change_status"
	SettingWebhookAPIKey    = "webhook_api_key"
	SettingQuantityMode     = "webhook_quantity"
	SettingBaseURL          = "web.base.url"
	SettingTenantName       = "tenant.name"
)

// SettingsRepository is a read-mostly key-value configuration store.
// Get returns the stored value or the provided default when the key is
// unset; it never fails on a missing key.
type SettingsRepository interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
}
