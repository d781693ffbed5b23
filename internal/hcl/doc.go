// Package hcl provides the HCL implementation of config.Loader. A
// configuration file holds a single `simulation` block whose attributes are
// evaluated, converted to their string form and handed to config.Decode.
//
//	simulation {
//	  epsilons    = "5, 10"
//	  temperature = 290
//	  structure   = "Q42.psf"
//	  ...
//	}
package hcl
