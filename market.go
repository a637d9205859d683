package agora

import (
	"context"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agorahq/agora-go/asset"
	"github.com/agorahq/agora-go/internal/api"
)

// MarketService wraps the market mechanics routes under /api/market.
type MarketService struct {
	*service
}

// HealthStatus is the payload returned by the health endpoints.
type HealthStatus struct {
	Status string `json:"status"`
}

// OK reports whether the service declared itself healthy.
func (h *HealthStatus) OK() bool {
	return h.Status == "ok"
}

// Wallet is an organization's asset wallet.
type Wallet struct {
	ID             string          `json:"id"`
	Label          string          `json:"label"`
	OrganizationID string          `json:"organization_id"`
	Balance        decimal.Decimal `json:"balance"`
}

// HeldAsset is a position inside a wallet: a quantity of an asset
// expression.
type HeldAsset struct {
	AssetID    string          `json:"asset_id"`
	Expression string          `json:"expression"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Asset parses the position's expression into the asset expression tree.
func (h *HeldAsset) Asset() (asset.Asset, error) {
	return asset.Parse(h.Expression)
}

// WalletContents is the full state of a wallet: its balance plus every
// held position.
type WalletContents struct {
	WalletID string          `json:"wallet_id"`
	Label    string          `json:"label"`
	Balance  decimal.Decimal `json:"balance"`
	Assets   []HeldAsset     `json:"assets"`
}

// Offer is a standing order to exchange an asset expression for currency.
type Offer struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	AgentID        string          `json:"agent_id"`
	AssetID        string          `json:"asset_id"`
	Expression     string          `json:"expression"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Asset parses the offered expression into the asset expression tree.
func (o *Offer) Asset() (asset.Asset, error) {
	return asset.Parse(o.Expression)
}

// MarketAsset is an asset as tracked by market mechanics.
type MarketAsset struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
}

// Asset parses the expression into the asset expression tree.
func (m *MarketAsset) Asset() (asset.Asset, error) {
	return asset.Parse(m.Expression)
}

// TargetStatus describes whether and when a proof target was resolved.
// ProvenTime is a rational in the asset language's "n" or "n/d" form, nil
// while the target is open.
type TargetStatus struct {
	ProvenTime *string `json:"proven_time"`
	Author     string  `json:"author,omitempty"`
}

// Proven reports whether the target has been proven.
func (t *TargetStatus) Proven() bool {
	return t.ProvenTime != nil
}

// WalletLookup selects how a wallet label is interpreted by
// GetWalletContents.
type WalletLookup string

const (
	// WalletByName looks the wallet up by its human-readable name.
	WalletByName WalletLookup = "name"
	// WalletByID looks the wallet up by its identifier.
	WalletByID WalletLookup = "id"
)

// Health checks the market mechanics service.
//
// GET /api/market/health
func (s *MarketService) Health(ctx context.Context) (*HealthStatus, error) {
	var result HealthStatus
	if err := s.get(ctx, api.MarketPath("health"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOrganizationIDs returns the organization IDs known to market mechanics.
//
// GET /api/market/organization_ids
func (s *MarketService) ListOrganizationIDs(ctx context.Context) ([]string, error) {
	var result []string
	if err := s.get(ctx, api.MarketPath("organization_ids"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAllAgents returns every agent participating in the market.
//
// GET /api/market/all_agents
func (s *MarketService) ListAllAgents(ctx context.Context) ([]Agent, error) {
	var result []Agent
	if err := s.get(ctx, api.MarketPath("all_agents"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListOrganizationAgents returns the agents of one organization.
//
// GET /api/market/organizations/{organization_id}/agents
func (s *MarketService) ListOrganizationAgents(ctx context.Context, organizationID string) ([]Agent, error) {
	var result []Agent
	path := api.MarketOrganizationsPath(url.PathEscape(organizationID), "agents")
	if err := s.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAllWallets returns every wallet in the market.
//
// GET /api/market/all_wallets
func (s *MarketService) ListAllWallets(ctx context.Context) ([]Wallet, error) {
	var result []Wallet
	if err := s.get(ctx, api.MarketPath("all_wallets"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetWalletsByID returns the wallets with the given IDs. IDs are sent as
// repeated wallet_ids query parameters.
//
// GET /api/market/wallets_by_id
func (s *MarketService) GetWalletsByID(ctx context.Context, walletIDs []string) ([]Wallet, error) {
	var result []Wallet
	query := url.Values{"wallet_ids": walletIDs}
	if err := s.get(ctx, api.MarketPath("wallets_by_id"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListOrganizationWallets returns the wallets of one organization.
//
// GET /api/market/organizations/{organization_id}/wallets
func (s *MarketService) ListOrganizationWallets(ctx context.Context, organizationID string) ([]Wallet, error) {
	var result []Wallet
	path := api.MarketOrganizationsPath(url.PathEscape(organizationID), "wallets")
	if err := s.get(ctx, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetWalletContents returns a wallet's balance and positions. The label is
// interpreted per the lookup mode, WalletByName when empty.
//
// GET /api/market/organizations/{organization_id}/wallets/{label}/wallet_contents
func (s *MarketService) GetWalletContents(ctx context.Context, organizationID, walletLabel string, by WalletLookup) (*WalletContents, error) {
	if by == "" {
		by = WalletByName
	}
	var result WalletContents
	path := api.MarketOrganizationsPath(url.PathEscape(organizationID),
		"wallets", url.PathEscape(walletLabel), "wallet_contents")
	query := url.Values{"wallet_id_or_name": {string(by)}}
	if err := s.get(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOffers returns every open offer.
//
// GET /api/market/offers
func (s *MarketService) ListOffers(ctx context.Context) ([]Offer, error) {
	var result []Offer
	if err := s.get(ctx, api.MarketPath("offers"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// OffersGivenTargets returns, per target ID, the offers referencing it.
//
// GET /api/market/offers_given_targets
func (s *MarketService) OffersGivenTargets(ctx context.Context, targetIDs []string) (map[string][]Offer, error) {
	var result map[string][]Offer
	query := url.Values{"target_ids": targetIDs}
	if err := s.get(ctx, api.MarketPath("offers_given_targets"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssetsGivenTargets returns, per target ID, the assets referencing it.
//
// GET /api/market/assets_given_targets
func (s *MarketService) AssetsGivenTargets(ctx context.Context, targetIDs []string) (map[string][]MarketAsset, error) {
	var result map[string][]MarketAsset
	query := url.Values{"target_ids": targetIDs}
	if err := s.get(ctx, api.MarketPath("assets_given_targets"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// TargetsGivenOffers returns, per offer ID, the targets it references.
//
// GET /api/market/targets_given_offers
func (s *MarketService) TargetsGivenOffers(ctx context.Context, offerIDs []string) (map[string][]string, error) {
	var result map[string][]string
	query := url.Values{"offer_ids": offerIDs}
	if err := s.get(ctx, api.MarketPath("targets_given_offers"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// TargetsGivenAssets returns, per asset ID, the targets it references.
//
// GET /api/market/targets_given_assets
func (s *MarketService) TargetsGivenAssets(ctx context.Context, assetIDs []string) (map[string][]string, error) {
	var result map[string][]string
	query := url.Values{"asset_ids": assetIDs}
	if err := s.get(ctx, api.MarketPath("targets_given_assets"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AllTargetStatuses returns the status of every tracked target, keyed by
// target ID.
//
// GET /api/market/all_target_statuses
func (s *MarketService) AllTargetStatuses(ctx context.Context) (map[string]TargetStatus, error) {
	var result map[string]TargetStatus
	if err := s.get(ctx, api.MarketPath("all_target_statuses"), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// TargetStatuses returns the status of the given targets, keyed by target ID.
//
// GET /api/market/specific_target_statuses
func (s *MarketService) TargetStatuses(ctx context.Context, targetIDs []string) (map[string]TargetStatus, error) {
	var result map[string]TargetStatus
	query := url.Values{"target_ids": targetIDs}
	if err := s.get(ctx, api.MarketPath("specific_target_statuses"), query, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RawGet is an escape hatch for unwrapped market endpoints. path is
// relative to /api/market.
func (s *MarketService) RawGet(ctx context.Context, path string, query url.Values, result any) error {
	return s.get(ctx, api.MarketPath(path), query, result)
}

// RawPost is an escape hatch POST for unwrapped market endpoints. path is
// relative to /api/market.
func (s *MarketService) RawPost(ctx context.Context, path string, query url.Values, body, result any) error {
	return s.post(ctx, api.MarketPath(path), query, body, result)
}
