// Package config loads addressform.json.
//
// Every field is optional; missing fields keep their defaults.
//
// # Configuration File Structure
//
//	{
//	  "host": "0.0.0.0",
//	  "port": 8080,
//	  "messages": "messages.yaml",
//	  "submit": {
//	    "sink": "s3",
//	    "bucket": "address-submissions",
//	    "prefix": "incoming",
//	    "region": "ap-south-1"
//	  },
//	  "rateLimit": { "enabled": true, "perSecond": 5, "burst": 10 },
//	  "metrics": { "enabled": true, "path": "/metrics", "namespace": "addressform" },
//	  "tracing": false,
//	  "logLevel": "info"
//	}
//
// # Usage
//
//	cfg, err := config.LoadOptional(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	fmt.Println("Listening on", cfg.Address())
package config
