// Package config loads sockhttp YAML configuration files.
//
// A file holds a defaults block and any number of named profiles. A
// profile is merged over the defaults and its {{variables}} expanded
// before it is turned into client options:
//
//	defaults:
//	  timeout: 5s
//	  retry: 2
//	  headers:
//	    Accept: application/json
//	profiles:
//	  staging:
//	    baseUrl: https://{{host}}/api
//	    variables:
//	      host: staging.example.com
//	    auth:
//	      user: demo
//	      pwd: secret
//	      scheme: digest
//
// Basic Usage:
//
//	client, err := config.NewClient("sockhttp.yaml", "staging")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// ValidateConfig reports every problem in a file at once instead of
// stopping at the first:
//
//	for _, verr := range config.ValidateConfig(cfg) {
//	    log.Printf("Validation error: %s", verr)
//	}
package config
