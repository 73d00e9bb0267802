package api

import (
	"encoding/json"
	"strings"
	"time"
)

// Addon categories, fixed enumeration.
const (
	CategoryInfra      = "INFRA"
	CategorySecurity   = "SECURITY"
	CategorySource     = "SOURCE"
	CategoryCICD       = "CI_CD"
	CategoryQuality    = "QUALITY"
	CategoryArtifact   = "ARTIFACT"
	CategoryMonitoring = "MONITORING"
	CategoryNetwork    = "NETWORK"
)

// AddonCategories lists every valid category in display order.
var AddonCategories = []string{
	CategoryInfra, CategorySecurity, CategorySource, CategoryCICD,
	CategoryQuality, CategoryArtifact, CategoryMonitoring, CategoryNetwork,
}

// Certificate types.
const (
	CertLetsEncrypt = "LETS_ENCRYPT"
	CertSelfSigned  = "SELF_SIGNED"
	CertCASigned    = "CA_SIGNED"
	CertWildcard    = "WILDCARD"
)

// Build statuses. BUILDING is the only non-terminal state.
const (
	BuildStatusBuilding = "BUILDING"
	BuildStatusSuccess  = "SUCCESS"
	BuildStatusFailed   = "FAILED"
)

// Deploy environments.
const (
	EnvInternet  = "INTERNET"
	EnvAirgapped = "AIRGAPPED"
)

// Customer is a customer account with its infrastructure descriptors.
type Customer struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Environment  string `json:"environment,omitempty"`
	K8sVersion   string `json:"k8sVersion,omitempty"`
	OS           string `json:"os,omitempty"`
	NodeCount    int    `json:"nodeCount,omitempty"`
	StorageInfo  string `json:"storageInfo,omitempty"`
	NetworkInfo  string `json:"networkInfo,omitempty"`
	VPNInfo      string `json:"vpnInfo,omitempty"`
	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// Project belongs to exactly one Customer; the customer reference is
// immutable after creation.
type Project struct {
	ID          int64  `json:"id"`
	CustomerID  int64  `json:"customerId"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
	Domain      string `json:"domain,omitempty"`
	Environment string `json:"environment,omitempty"`
	Active      bool   `json:"active"`
}

// Addon is a catalog entry. Name is the immutable system name used as the
// stable join key (e.g. "cert-manager", "keycloak"); UpstreamImages and
// Dependencies are JSON-encoded arrays stored as opaque strings.
type Addon struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	DisplayName      string `json:"displayName"`
	Category         string `json:"category"`
	Description      string `json:"description,omitempty"`
	IconURL          string `json:"iconUrl,omitempty"`
	UpstreamImages   string `json:"upstreamImages,omitempty"`
	HelmRepoURL      string `json:"helmRepoUrl,omitempty"`
	HelmChartName    string `json:"helmChartName,omitempty"`
	KeycloakEnabled  bool   `json:"keycloakEnabled"`
	KeycloakTemplate string `json:"keycloakTemplate,omitempty"`
	InstallOrder     int    `json:"installOrder,omitempty"`
	Dependencies     string `json:"dependencies,omitempty"`
	Active           bool   `json:"active"`
	LatestVersion    string `json:"latestVersion,omitempty"`
}

// UpstreamImageList decodes the JSON-encoded image list. Invalid or missing
// JSON degrades to an empty list so render paths never see a decode error.
func (a Addon) UpstreamImageList() []string {
	return decodeStringList(a.UpstreamImages)
}

// DependencyList decodes the JSON-encoded dependency name list, degrading
// to empty on bad input.
func (a Addon) DependencyList() []string {
	return decodeStringList(a.Dependencies)
}

func decodeStringList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// AddonVersion is one released version of an Addon. At most one version per
// add-on carries Latest.
type AddonVersion struct {
	ID               int64  `json:"id"`
	AddonID          int64  `json:"addonId"`
	Version          string `json:"version"`
	HelmChartVersion string `json:"helmChartVersion,omitempty"`
	ImageTags        string `json:"imageTags,omitempty"`
	Latest           bool   `json:"isLatest"`
	SyncedAt         string `json:"syncedAt,omitempty"`
}

// Certificate tracks one TLS certificate for a customer domain.
// DaysUntilExpiry is backend-derived from ExpiresAt, never stored.
type Certificate struct {
	ID              int64  `json:"id"`
	CustomerID      int64  `json:"customerId"`
	CustomerName    string `json:"customerName,omitempty"`
	Domain          string `json:"domain"`
	Issuer          string `json:"issuer,omitempty"`
	CertType        string `json:"certType,omitempty"`
	IssuedAt        string `json:"issuedAt,omitempty"`
	ExpiresAt       string `json:"expiresAt"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
	AutoRenew       bool   `json:"autoRenew"`
	Memo            string `json:"memo,omitempty"`
}

// CertRenewal is the body of POST /certificates/{id}/renew. Renewal sets a
// new expiry and appends metadata; it never deletes the record.
type CertRenewal struct {
	NewExpiresAt string `json:"newExpiresAt"`
	RenewedBy    string `json:"renewedBy,omitempty"`
	Memo         string `json:"memo,omitempty"`
}

// DaysUntil returns whole days from now until the expiry date (layout
// 2006-01-02, with RFC 3339 accepted). Unparseable input yields 0.
func DaysUntil(expiresAt string, now time.Time) int {
	expiresAt = strings.TrimSpace(expiresAt)
	t, err := time.Parse("2006-01-02", expiresAt)
	if err != nil {
		t, err = time.Parse(time.RFC3339, expiresAt)
		if err != nil {
			return 0
		}
	}
	return int(t.Sub(now).Hours() / 24)
}

// ExpiryClass buckets days-until-expiry for status badges: ≤7 days is
// "expired", 8–30 "warning", above that "active".
func ExpiryClass(days int) string {
	switch {
	case days <= 7:
		return "expired"
	case days <= 30:
		return "warning"
	default:
		return "active"
	}
}

// SelectedAddon is one entry of a build's selected-add-ons list. Version
// empty means "latest (automatic)" — resolution is a backend concern.
type SelectedAddon struct {
	AddonID          int64  `json:"addonId"`
	AddonName        string `json:"addonName"`
	Version          string `json:"version,omitempty"`
	HelmChartVersion string `json:"helmChartVersion,omitempty"`
}

// BuildRequest is the body of POST /packages/build.
type BuildRequest struct {
	CustomerID      *int64          `json:"customerId,omitempty"`
	ProjectID       *int64          `json:"projectId,omitempty"`
	Addons          []SelectedAddon `json:"addons"`
	Namespace       string          `json:"namespace"`
	Domain          string          `json:"domain"`
	TLSEnabled      bool            `json:"tlsEnabled"`
	KeycloakEnabled bool            `json:"keycloakEnabled"`
	DeployEnv       string          `json:"deployEnv,omitempty"`
	RegistryURL     *string         `json:"registryUrl,omitempty"`
	CreatedBy       string          `json:"createdBy,omitempty"`
}

// Build is one package-assembly job. BuildHash is the backend-computed
// idempotency key; the client treats it as opaque and never recomputes it.
type Build struct {
	ID             int64  `json:"id"`
	BuildHash      string `json:"buildHash"`
	CustomerID     *int64 `json:"customerId,omitempty"`
	ProjectID      *int64 `json:"projectId,omitempty"`
	SelectedAddons string `json:"selectedAddons,omitempty"`
	Namespace      string `json:"namespace,omitempty"`
	Domain         string `json:"domain,omitempty"`
	TLSEnabled     bool   `json:"tlsEnabled"`
	Keycloak       bool   `json:"keycloakEnabled"`
	DeployEnv      string `json:"deployEnv,omitempty"`
	RegistryURL    string `json:"registryUrl,omitempty"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
	TotalSize      int64  `json:"totalSize"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	CreatedBy      string `json:"createdBy,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// SelectedAddonList decodes the JSON-encoded selection, degrading to empty
// on bad input.
func (b Build) SelectedAddonList() []SelectedAddon {
	if strings.TrimSpace(b.SelectedAddons) == "" {
		return nil
	}
	var out []SelectedAddon
	if err := json.Unmarshal([]byte(b.SelectedAddons), &out); err != nil {
		return nil
	}
	return out
}

// Terminal reports whether the build reached SUCCESS or FAILED.
func (b Build) Terminal() bool {
	return b.Status == BuildStatusSuccess || b.Status == BuildStatusFailed
}

// BuildStatus is the poll payload of GET /packages/hash/{hash}/status.
type BuildStatus struct {
	BuildHash    string `json:"buildHash"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Terminal reports whether the status is SUCCESS or FAILED.
func (s BuildStatus) Terminal() bool {
	return s.Status == BuildStatusSuccess || s.Status == BuildStatusFailed
}

// SyncLog is one registry-synchronization attempt.
type SyncLog struct {
	ID          int64  `json:"id"`
	AddonName   string `json:"addonName"`
	SyncType    string `json:"syncType,omitempty"`
	Status      string `json:"status"`
	NewVersions int    `json:"newVersions"`
	Error       string `json:"errorMessage,omitempty"`
	StartedAt   string `json:"startedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
}

// Notification is one operator notification.
type Notification struct {
	ID        int64  `json:"id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title"`
	Message   string `json:"message,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// DashboardSummary is the aggregate view of GET /dashboard/summary.
type DashboardSummary struct {
	CustomerCount      int `json:"customerCount"`
	ProjectCount       int `json:"projectCount"`
	AddonCount         int `json:"addonCount"`
	CertificateCount   int `json:"certificateCount"`
	ExpiringCertCount  int `json:"expiringCertCount"`
	BuildsInProgress   int `json:"buildsInProgress"`
	BuildsLast30Days   int `json:"buildsLast30Days"`
	UnreadNotification int `json:"unreadNotifications"`
}
