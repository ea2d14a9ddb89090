// Package tlsroots builds the certificate trust pool for the cloud
// save client.
//
// Deployments that front the save service with a private CA point
// cloud.ca_file at a PEM bundle; the pool combines it with the system
// roots so public endpoints keep working.
package tlsroots
