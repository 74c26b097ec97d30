// Package config handles loading and validating button node configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (BUTTONNODE_*)
//   - Validation of required fields and enumerations
//   - Default values matching the reference firmware (queue of 8, 100 ms spin)
//
// Security Considerations:
//   - Broker credentials and the InfluxDB token should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Bridge.Strategy)
package config
