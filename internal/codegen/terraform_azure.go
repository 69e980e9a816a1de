package codegen

import (
	"fmt"
	"strings"

	"github.com/infrax/infra-engine/internal/types"
)

func azureTerraform(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`terraform {
  required_version = ">= 1.0"
  required_providers {
    azurerm = {
      source  = "hashicorp/azurerm"
      version = "~> 3.0"
    }
  }
}

provider "azurerm" {
  features {}
}

variable "location" {
  description = "Azure region"
  type        = string
  default     = %q
}

variable "environment" {
  description = "Environment name"
  type        = string
  default     = %q
}

variable "project_name" {
  description = "Project name"
  type        = string
  default     = %q
}

locals {
  common_tags = {
    Environment = var.environment
    Project     = var.project_name
    ManagedBy   = "terraform"
  }
}

resource "azurerm_resource_group" "main" {
  name     = "${var.project_name}-${var.environment}-rg"
  location = var.location

  tags = local.common_tags
}
`, selection.Region, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		name := names.next(svc.Category)
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(azureTerraformVM(name, svc))
		case types.CategoryStorage:
			b.WriteString(azureTerraformStorage(name, svc))
		case types.CategoryDatabase:
			b.WriteString(azureTerraformDatabase(name, svc))
		case types.CategoryNetworking:
			b.WriteString(azureTerraformVNet(name, svc))
		case types.CategoryContainer:
			b.WriteString(azureTerraformAKS(name, svc))
		}
	}

	return b.String()
}

func azureTerraformVM(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "azurerm_network_interface" "%s_nic" {
  name                = "${var.project_name}-%s-nic"
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name

  ip_configuration {
    name                          = "internal"
    private_ip_address_allocation = "Dynamic"
  }
}

resource "azurerm_linux_virtual_machine" %q {
  name                = "${var.project_name}-%s"
  resource_group_name = azurerm_resource_group.main.name
  location            = azurerm_resource_group.main.location
  size                = %q
  admin_username      = "azureuser"

  network_interface_ids = [azurerm_network_interface.%s_nic.id]

  admin_ssh_key {
    username   = "azureuser"
    public_key = file("~/.ssh/id_rsa.pub")
  }

  os_disk {
    caching              = "ReadWrite"
    storage_account_type = "Standard_LRS"
  }

  source_image_reference {
    publisher = "Canonical"
    offer     = "0001-com-ubuntu-server-jammy"
    sku       = "22_04-lts"
    version   = "latest"
  }

  tags = local.common_tags
}
`, name, name, name, name, svc.Attributes["vm_size"], name)
}

func azureTerraformStorage(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "azurerm_storage_account" %q {
  name                     = replace("${var.project_name}%s", "-", "")
  resource_group_name      = azurerm_resource_group.main.name
  location                 = azurerm_resource_group.main.location
  account_tier             = %q
  account_replication_type = "LRS"
  min_tls_version          = "TLS1_2"

  blob_properties {
    versioning_enabled = true
  }

  tags = local.common_tags
}
`, name, name, svc.Attributes["account_tier"])
}

func azureTerraformDatabase(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "azurerm_postgresql_flexible_server" %q {
  name                = "${var.project_name}-${var.environment}-%s"
  resource_group_name = azurerm_resource_group.main.name
  location            = azurerm_resource_group.main.location
  sku_name            = %q
  version             = "15"
  storage_mb          = 32768

  administrator_login    = "dbadmin"
  administrator_password = random_password.%s.result

  backup_retention_days = 7

  tags = local.common_tags
}

resource "random_password" %q {
  length  = 24
  special = false
}
`, name, name, svc.Attributes["instance_class"], name, name)
}

func azureTerraformVNet(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "azurerm_virtual_network" %q {
  name                = "${var.project_name}-vnet"
  address_space       = [%q]
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name

  tags = local.common_tags
}

resource "azurerm_subnet" "%s_app" {
  name                 = "${var.project_name}-app-subnet"
  resource_group_name  = azurerm_resource_group.main.name
  virtual_network_name = azurerm_virtual_network.%s.name
  address_prefixes     = ["10.0.1.0/24"]
}
`, name, svc.Attributes["cidr_block"], name, name)
}

func azureTerraformAKS(name string, svc types.ResolvedService) string {
	return fmt.Sprintf(`
resource "azurerm_kubernetes_cluster" %q {
  name                = "${var.project_name}-${var.environment}-aks"
  location            = azurerm_resource_group.main.location
  resource_group_name = azurerm_resource_group.main.name
  dns_prefix          = "${var.project_name}-%s"

  default_node_pool {
    name       = "default"
    node_count = %s
    vm_size    = "Standard_B2s"
  }

  identity {
    type = "SystemAssigned"
  }

  tags = local.common_tags
}
`, name, name, svc.Attributes["node_count"])
}
