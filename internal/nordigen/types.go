package nordigen

import "github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"

type tokenRequest struct {
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
}

type tokenResponse struct {
	Access         string `json:"access"`
	AccessExpires  int    `json:"access_expires"`
	Refresh        string `json:"refresh"`
	RefreshExpires int    `json:"refresh_expires"`
}

type requisitionPage struct {
	Count    int                     `json:"count"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
	Results  []reconcile.Requisition `json:"results"`
}

type createRequisitionRequest struct {
	Redirect      string `json:"redirect"`
	Reference     string `json:"reference"`
	InstitutionID string `json:"institution_id"`
}

type initiateRequest struct {
	InstitutionID string `json:"aspsp_id"`
}

type initiateResponse struct {
	Initiate string `json:"initiate"`
}

type accountDetailsResponse struct {
	Account reconcile.AccountDetails `json:"account"`
}
