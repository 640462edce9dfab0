package security

import "testing"

func TestValidateOutboundURLRejectsZonedIPv6ByDefault(t *testing.T) {
	err := ValidateOutboundURL("https://[fe80::1%25eth0]/", OutboundURLOptions{})
	if err == nil {
		t.Fatal("expected zone-literal IPv6 host to be rejected")
	}
}

func TestValidateOutboundURLAllowsZonedIPv6WhenLocalNetworksAllowed(t *testing.T) {
	err := ValidateOutboundURL("https://[fe80::1%25eth0]/", OutboundURLOptions{
		AllowLocalNetworks: true,
	})
	if err != nil {
		t.Fatalf("expected zone-literal IPv6 host to be allowed when local networks are enabled: %v", err)
	}
}

func TestValidateOutboundURLRejectsNonWebSchemes(t *testing.T) {
	for _, rawURL := range []string{
		"javascript:alert(1)",
		"file:///etc/passwd",
		"ftp://example.com/script.json",
	} {
		err := ValidateOutboundURL(rawURL, OutboundURLOptions{AllowHTTP: true, AllowLocalNetworks: true})
		if err == nil {
			t.Fatalf("expected %q to be rejected", rawURL)
		}
	}
}

func TestValidateOutboundURLRequiresHost(t *testing.T) {
	err := ValidateOutboundURL("https:///path-only", OutboundURLOptions{})
	if err == nil {
		t.Fatal("expected host-less URL to be rejected")
	}
}

func TestValidateOutboundURLAllowsPlainWebTargets(t *testing.T) {
	for _, rawURL := range []string{
		"https://example.com/share/abc123",
		"http://localhost:8080/conversation.html",
	} {
		err := ValidateOutboundURL(rawURL, OutboundURLOptions{AllowHTTP: true, AllowLocalNetworks: true})
		if err != nil {
			t.Fatalf("expected %q to pass: %v", rawURL, err)
		}
	}
}
