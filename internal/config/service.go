package config

type ServiceConfig struct {
	Name        string           `yaml:"name"`
	Environment string           `yaml:"environment"`
	Version     string           `yaml:"version"`
	ClientURL   string           `yaml:"client_url"`
	VNPay       VNPayConfig      `yaml:"vnpay"`
	PayPal      PayPalConfig     `yaml:"paypal"`
	Enrollment  EnrollmentConfig `yaml:"enrollment"`
}

// VNPayConfig holds credentials for the redirect gateway. TmnCode is the
// merchant code issued by the gateway; HashSecret signs every outbound URL
// and verifies every callback.
type VNPayConfig struct {
	TmnCode    string `yaml:"tmn_code"`
	HashSecret string `yaml:"hash_secret"`
	PayURL     string `yaml:"pay_url"`
	ReturnURL  string `yaml:"return_url"`
}

type PayPalConfig struct {
	ClientID  string   `yaml:"client_id"`
	Secret    string   `yaml:"secret"`
	BaseURL   string   `yaml:"base_url"`
	ReturnURL string   `yaml:"return_url"`
	CancelURL string   `yaml:"cancel_url"`
	Timeout   Duration `yaml:"timeout"`
}

// EnrollmentConfig points at the course service that grants access after a
// completed purchase. TokenSecret signs the internal service-identity token.
type EnrollmentConfig struct {
	BaseURL     string   `yaml:"base_url"`
	TokenSecret string   `yaml:"token_secret"`
	Timeout     Duration `yaml:"timeout"`
}
