/*
Package ports defines the driven ports (interfaces) of the hello service.

These interfaces decouple the HTTP application from external implementations,
allowing it to run with process-local state or shared backends.

# Key Interfaces

  - KeyStore: Supplies named secret keys, such as the CSRF signing key.
*/
package ports
